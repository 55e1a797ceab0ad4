package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
)

// Pipeline builders for the public listing aggregations. Each helper
// returns one stage or one filter fragment so the search repository
// composes queries instead of repeating hand-built documents.

// publicVisibilityFilter matches only listings a visitor may see:
// approved, active, never declined, never soft-deleted.
func publicVisibilityFilter() bson.M {
	return bson.M{
		"onReview":   false,
		"isApproved": true,
		"isActive":   true,
		"isDeclined": false,
		"isDeleted":  false,
	}
}

// ownerAccountFilter hides listings whose owner has been restricted.
// It must run after the user lookup and unwind stages.
func ownerAccountFilter() bson.M {
	return bson.M{
		"user.accountStatus": bson.M{
			"$in": bson.A{string(domain.AccountValidate), string(domain.AccountWarning)},
		},
	}
}

// priceRangeFilter matches discounted listings by discountPrice and
// any listing by base price. The base-price branch is unconditional
// so a discounted listing still matches when its base price is in
// range. A nil max leaves the range open-ended.
func priceRangeFilter(minPrice, maxPrice *int64) bson.M {
	low := int64(0)
	if minPrice != nil {
		low = *minPrice
	}

	rng := bson.M{"$gte": low}
	if maxPrice != nil {
		rng = bson.M{"$gte": low, "$lte": *maxPrice}
	}

	return bson.M{
		"$or": bson.A{
			bson.M{"$and": bson.A{
				bson.M{"discount": true},
				bson.M{"discountPrice": rng},
			}},
			bson.M{"price": rng},
		},
	}
}

// locationFilter narrows by whichever geo references the caller set.
func locationFilter(f *domain.ListingFilter) bson.M {
	m := bson.M{}
	if f.DivisionID != nil {
		m["divisionID"] = *f.DivisionID
	}
	if f.DistrictID != nil {
		m["districtID"] = *f.DistrictID
	}
	if f.AreaID != nil {
		m["areaID"] = *f.AreaID
	}
	return m
}

// detailRefsFilter narrows by brand and category, which live on the
// joined postdetails document.
func detailRefsFilter(f *domain.ListingFilter) bson.M {
	m := bson.M{}
	if f.BrandID != nil {
		m["postdetails.brandID"] = *f.BrandID
	}
	if f.CategoryID != nil {
		m["postdetails.categoryID"] = *f.CategoryID
	}
	if f.ModelID != nil {
		m["postdetails.modelID"] = *f.ModelID
	}
	return m
}

// keywordFilter matches a case-insensitive substring against the
// title and the joined description and keyword fields.
func keywordFilter(keyword string) bson.M {
	regex := bson.M{"$regex": keyword, "$options": "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"title": regex},
			bson.M{"postdetails.description": regex},
			bson.M{"postdetails.keyword": regex},
		},
	}
}

func lookupStage(from, localField, foreignField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   localField,
		"foreignField": foreignField,
		"as":           as,
	}}}
}

func unwindStage(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{
		"path":                       path,
		"preserveNullAndEmptyArrays": true,
	}}}
}

func matchStage(filter bson.M) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func sortStage(field string, order int) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: order}}}}
}

// joinStages are the lookups shared by every public listing pipeline:
// details, owner, geo references and taxonomy references.
func joinStages() []bson.D {
	return []bson.D{
		lookupStage(detailsCollectionName, "_id", "postID", "postdetails"),
		unwindStage("$postdetails"),
		lookupStage(userCollectionName, "userID", "_id", "user"),
		unwindStage("$user"),
		lookupStage("divisions", "divisionID", "_id", "division"),
		unwindStage("$division"),
		lookupStage("districts", "districtID", "_id", "district"),
		unwindStage("$district"),
		lookupStage("areas", "areaID", "_id", "area"),
		unwindStage("$area"),
	}
}

// feedProjection shapes the public feed row. Moderation flags and the
// owner's contact fields never leave the database.
func feedProjection() bson.D {
	return bson.D{{Key: "$project", Value: bson.M{
		"_id":           1,
		"title":         1,
		"price":         1,
		"discount":      1,
		"discountPrice": 1,
		"stock":         1,
		"mainImg":       1,
		"address":       1,
		"editCount":     1,
		"viewsCount":    1,
		"createdAt":     1,
		"updatedAt":     1,
		"user":          bson.M{"_id": 1, "name": 1},
		"division":      bson.M{"_id": 1, "divisionName": 1},
		"district":      bson.M{"_id": 1, "districtName": 1},
		"area":          bson.M{"_id": 1, "areaName": 1},
	}}}
}

// detailProjection strips internal bookkeeping from the single-post
// public view while keeping the joined reference documents.
func detailProjection() bson.D {
	return bson.D{{Key: "$project", Value: bson.M{
		"onReview":               0,
		"isApproved":             0,
		"isActive":               0,
		"isDeclined":             0,
		"isDeleted":              0,
		"reportCount":            0,
		"reportedBy":             0,
		"feedback":               0,
		"userID":                 0,
		"divisionID":             0,
		"districtID":             0,
		"areaID":                 0,
		"user.password":          0,
		"user.email":             0,
		"user.phone":             0,
		"user.accountStatus":     0,
		"user.warningCount":      0,
		"user.createdAt":         0,
		"user.updatedAt":         0,
		"postdetails.brandID":    0,
		"postdetails.categoryID": 0,
		"postdetails.modelID":    0,
		"postdetails.createdAt":  0,
		"postdetails.updatedAt":  0,
		"brand.createdAt":        0,
		"brand.updatedAt":        0,
		"category.createdAt":     0,
		"category.updatedAt":     0,
	}}}
}

// detailJoinStages extend the shared joins with the taxonomy lookups
// used only on the single-post page. Brand and category stay as
// arrays, matching how the storefront consumes them.
func detailJoinStages() []bson.D {
	stages := joinStages()
	stages = append(stages,
		lookupStage("brands", "postdetails.brandID", "_id", "brand"),
		lookupStage("categories", "postdetails.categoryID", "_id", "category"),
	)
	return stages
}
