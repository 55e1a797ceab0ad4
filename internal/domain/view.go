package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Denormalized read shapes produced by the aggregation engine. These
// carry bson tags because they are decoded straight out of pipeline
// results; the projections in the mongodb adapter are the single
// source of truth for what gets redacted.

type OwnerSummary struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

type DivisionRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"divisionName" bson:"divisionName"`
}

type DistrictRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"districtName" bson:"districtName"`
}

type AreaRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"areaName" bson:"areaName"`
}

type BrandRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"brandName" bson:"brandName"`
}

type CategoryRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"categoryName" bson:"categoryName"`
}

// FeedItem is the redacted public feed/filter/search row.
type FeedItem struct {
	ID            primitive.ObjectID `json:"id" bson:"_id"`
	Owner         OwnerSummary       `json:"user" bson:"user"`
	Title         string             `json:"title" bson:"title"`
	MainImage     ImageRef           `json:"mainImg" bson:"mainImg"`
	Price         int64              `json:"price" bson:"price"`
	Discount      bool               `json:"discount" bson:"discount"`
	DiscountPrice int64              `json:"discountPrice" bson:"discountPrice"`
	Stock         int64              `json:"stock" bson:"stock"`
	EditCount     int                `json:"editCount" bson:"editCount"`
	ViewsCount    int64              `json:"viewsCount" bson:"viewsCount"`
	Division      DivisionRef        `json:"division" bson:"division"`
	District      DistrictRef        `json:"district" bson:"district"`
	Area          AreaRef            `json:"area" bson:"area"`
	Address       string             `json:"address" bson:"address"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DetailsView is the joined postdetails sub-document of a PostView.
type DetailsView struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Description string             `json:"description" bson:"description"`
	Keyword     string             `json:"keyword" bson:"keyword"`
	Img1        ImageRef           `json:"img1,omitempty" bson:"img1,omitempty"`
	Img2        ImageRef           `json:"img2,omitempty" bson:"img2,omitempty"`
	Img3        ImageRef           `json:"img3,omitempty" bson:"img3,omitempty"`
	Img4        ImageRef           `json:"img4,omitempty" bson:"img4,omitempty"`
	Brand       []BrandRef         `json:"brand" bson:"brand"`
	Category    []CategoryRef      `json:"category" bson:"category"`
}

// PostView is the fully joined, field-redacted single listing detail.
type PostView struct {
	ID            primitive.ObjectID `json:"id" bson:"_id"`
	Owner         OwnerSummary       `json:"user" bson:"user"`
	Title         string             `json:"title" bson:"title"`
	MainImage     ImageRef           `json:"mainImg" bson:"mainImg"`
	Price         int64              `json:"price" bson:"price"`
	Discount      bool               `json:"discount" bson:"discount"`
	DiscountPrice int64              `json:"discountPrice" bson:"discountPrice"`
	Stock         int64              `json:"stock" bson:"stock"`
	EditCount     int                `json:"editCount" bson:"editCount"`
	ViewsCount    int64              `json:"viewsCount" bson:"viewsCount"`
	Address       string             `json:"address" bson:"address"`
	Division      DivisionRef        `json:"division" bson:"division"`
	District      DistrictRef        `json:"district" bson:"district"`
	Area          AreaRef            `json:"area" bson:"area"`
	Details       DetailsView        `json:"postdetails" bson:"postdetails"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ListingFilter narrows feed/search queries. Nil price bounds mean
// unbounded; MinPrice defaults to zero at the pipeline level.
type ListingFilter struct {
	DivisionID *primitive.ObjectID
	DistrictID *primitive.ObjectID
	AreaID     *primitive.ObjectID
	BrandID    *primitive.ObjectID
	CategoryID *primitive.ObjectID
	ModelID    *primitive.ObjectID
	MinPrice   *int64
	MaxPrice   *int64
}

// Empty reports whether no narrowing criteria were supplied.
func (f ListingFilter) Empty() bool {
	return f.DivisionID == nil && f.DistrictID == nil && f.AreaID == nil &&
		f.BrandID == nil && f.CategoryID == nil && f.ModelID == nil &&
		f.MinPrice == nil && f.MaxPrice == nil
}
