package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
)

const (
	postCollectionName    = "posts"
	detailsCollectionName = "postdetails"
	userCollectionName    = "users"
)

type postDocument struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	OwnerID       primitive.ObjectID   `bson:"userID"`
	Title         string               `bson:"title"`
	Price         int64                `bson:"price"`
	Discount      bool                 `bson:"discount"`
	DiscountPrice int64                `bson:"discountPrice"`
	Stock         int64                `bson:"stock"`
	MainImage     domain.ImageRef      `bson:"mainImg,omitempty"`
	DivisionID    primitive.ObjectID   `bson:"divisionID"`
	DistrictID    primitive.ObjectID   `bson:"districtID"`
	AreaID        primitive.ObjectID   `bson:"areaID"`
	Address       string               `bson:"address"`
	OnReview      bool                 `bson:"onReview"`
	IsApproved    bool                 `bson:"isApproved"`
	IsDeclined    bool                 `bson:"isDeclined"`
	IsActive      bool                 `bson:"isActive"`
	IsDeleted     bool                 `bson:"isDeleted"`
	ReportCount   int                  `bson:"reportCount"`
	ReportedBy    []primitive.ObjectID `bson:"reportedBy,omitempty"`
	Feedback      string               `bson:"feedback,omitempty"`
	EditCount     int                  `bson:"editCount"`
	ViewsCount    int64                `bson:"viewsCount"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func fromDomainPost(p *domain.Post) *postDocument {
	return &postDocument{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Title:         p.Title,
		Price:         p.Price,
		Discount:      p.Discount,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		MainImage:     p.MainImage,
		DivisionID:    p.DivisionID,
		DistrictID:    p.DistrictID,
		AreaID:        p.AreaID,
		Address:       p.Address,
		OnReview:      p.OnReview,
		IsApproved:    p.IsApproved,
		IsDeclined:    p.IsDeclined,
		IsActive:      p.IsActive,
		IsDeleted:     p.IsDeleted,
		ReportCount:   p.ReportCount,
		ReportedBy:    p.ReportedBy,
		Feedback:      p.Feedback,
		EditCount:     p.EditCount,
		ViewsCount:    p.ViewsCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (doc *postDocument) toDomainPost() *domain.Post {
	return &domain.Post{
		ID:            doc.ID,
		OwnerID:       doc.OwnerID,
		Title:         doc.Title,
		Price:         doc.Price,
		Discount:      doc.Discount,
		DiscountPrice: doc.DiscountPrice,
		Stock:         doc.Stock,
		MainImage:     doc.MainImage,
		DivisionID:    doc.DivisionID,
		DistrictID:    doc.DistrictID,
		AreaID:        doc.AreaID,
		Address:       doc.Address,
		OnReview:      doc.OnReview,
		IsApproved:    doc.IsApproved,
		IsDeclined:    doc.IsDeclined,
		IsActive:      doc.IsActive,
		IsDeleted:     doc.IsDeleted,
		ReportCount:   doc.ReportCount,
		ReportedBy:    doc.ReportedBy,
		Feedback:      doc.Feedback,
		EditCount:     doc.EditCount,
		ViewsCount:    doc.ViewsCount,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

type detailsDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	PostID      primitive.ObjectID `bson:"postID"`
	BrandID     primitive.ObjectID `bson:"brandID"`
	CategoryID  primitive.ObjectID `bson:"categoryID"`
	ModelID     primitive.ObjectID `bson:"modelID"`
	Description string             `bson:"description"`
	Keyword     string             `bson:"keyword"`
	Img1        domain.ImageRef    `bson:"img1,omitempty"`
	Img2        domain.ImageRef    `bson:"img2,omitempty"`
	Img3        domain.ImageRef    `bson:"img3,omitempty"`
	Img4        domain.ImageRef    `bson:"img4,omitempty"`
}

func fromDomainDetails(d *domain.PostDetails) *detailsDocument {
	return &detailsDocument{
		ID:          d.ID,
		PostID:      d.PostID,
		BrandID:     d.BrandID,
		CategoryID:  d.CategoryID,
		ModelID:     d.ModelID,
		Description: d.Description,
		Keyword:     d.Keyword,
		Img1:        d.Img1,
		Img2:        d.Img2,
		Img3:        d.Img3,
		Img4:        d.Img4,
	}
}

func (doc *detailsDocument) toDomainDetails() *domain.PostDetails {
	return &domain.PostDetails{
		ID:          doc.ID,
		PostID:      doc.PostID,
		BrandID:     doc.BrandID,
		CategoryID:  doc.CategoryID,
		ModelID:     doc.ModelID,
		Description: doc.Description,
		Keyword:     doc.Keyword,
		Img1:        doc.Img1,
		Img2:        doc.Img2,
		Img3:        doc.Img3,
		Img4:        doc.Img4,
	}
}

type userDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	Phone         string             `bson:"phone"`
	AccountStatus string             `bson:"accountStatus"`
	WarningCount  int                `bson:"warningCount"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (doc *userDocument) toDomainUser() *domain.User {
	return &domain.User{
		ID:            doc.ID,
		Name:          doc.Name,
		Email:         doc.Email,
		Phone:         doc.Phone,
		AccountStatus: domain.AccountStatus(doc.AccountStatus),
		WarningCount:  doc.WarningCount,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
