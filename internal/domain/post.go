package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageRef points at one remote object in the asset store. ObjectID is
// the key required to delete the blob; the URL is never used as a key.
type ImageRef struct {
	URL      string `json:"url" bson:"url"`
	ObjectID string `json:"objectId" bson:"objectId"`
}

func (r ImageRef) IsZero() bool {
	return r.URL == "" && r.ObjectID == ""
}

// Post is the listing summary stored in the posts collection. The
// moderation flags are only ever mutated through the transition
// methods in state.go.
type Post struct {
	ID            primitive.ObjectID
	OwnerID       primitive.ObjectID
	Title         string
	Price         int64
	Discount      bool
	DiscountPrice int64
	Stock         int64
	MainImage     ImageRef
	DivisionID    primitive.ObjectID
	DistrictID    primitive.ObjectID
	AreaID        primitive.ObjectID
	Address       string

	OnReview   bool
	IsApproved bool
	IsDeclined bool
	IsActive   bool
	IsDeleted  bool

	ReportCount int
	ReportedBy  []primitive.ObjectID
	Feedback    string

	EditCount  int
	ViewsCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostDetails holds the extended attributes and the four detail image
// slots. It exists iff its owning Post exists.
type PostDetails struct {
	ID          primitive.ObjectID
	PostID      primitive.ObjectID
	BrandID     primitive.ObjectID
	CategoryID  primitive.ObjectID
	ModelID     primitive.ObjectID
	Description string
	Keyword     string
	Img1        ImageRef
	Img2        ImageRef
	Img3        ImageRef
	Img4        ImageRef
}

// SlotID names one of the five fixed image positions on a listing.
type SlotID string

const (
	SlotMain SlotID = "mainImg"
	SlotImg1 SlotID = "img1"
	SlotImg2 SlotID = "img2"
	SlotImg3 SlotID = "img3"
	SlotImg4 SlotID = "img4"
)

// DetailSlots returns the four detail slots in their fixed order.
func (d *PostDetails) DetailSlots() [4]ImageRef {
	return [4]ImageRef{d.Img1, d.Img2, d.Img3, d.Img4}
}

// SetDetailSlots assigns the four detail slots in file-array order.
func (d *PostDetails) SetDetailSlots(refs [4]ImageRef) {
	d.Img1, d.Img2, d.Img3, d.Img4 = refs[0], refs[1], refs[2], refs[3]
}

// FindSlotByObjectID scans the main slot and the four detail slots for
// the given remote object id.
func FindSlotByObjectID(post *Post, details *PostDetails, objectID string) (SlotID, bool) {
	if objectID == "" {
		return "", false
	}
	if post != nil && post.MainImage.ObjectID == objectID {
		return SlotMain, true
	}
	if details == nil {
		return "", false
	}
	switch objectID {
	case details.Img1.ObjectID:
		return SlotImg1, true
	case details.Img2.ObjectID:
		return SlotImg2, true
	case details.Img3.ObjectID:
		return SlotImg3, true
	case details.Img4.ObjectID:
		return SlotImg4, true
	}
	return "", false
}

// PopulatedObjectIDs collects the remote object ids of every non-empty
// slot across the pair, main image first.
func PopulatedObjectIDs(post *Post, details *PostDetails) []string {
	var ids []string
	if post != nil && !post.MainImage.IsZero() {
		ids = append(ids, post.MainImage.ObjectID)
	}
	if details != nil {
		for _, ref := range details.DetailSlots() {
			if !ref.IsZero() {
				ids = append(ids, ref.ObjectID)
			}
		}
	}
	return ids
}
