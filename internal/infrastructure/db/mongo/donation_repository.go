package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
	"github.com/mealbridge/mealbridge-api/internal/core/query"
)

const collectionDonations = "donations"

type DonationRepository struct {
	col *mongo.Collection
}

func NewDonationRepository(db *mongo.Database) *DonationRepository {
	return &DonationRepository{col: db.Collection(collectionDonations)}
}

// donationDoc is the stored shape of a donation. The _id is a Mongo ObjectID
// while the domain carries its hex form; donor/recipient are stored as hex
// strings so query filters coming off the URL compare directly.
type donationDoc struct {
	ID                 primitive.ObjectID     `bson:"_id,omitempty"`
	Title              string                 `bson:"title"`
	Description        string                 `bson:"description"`
	Quantity           float64                `bson:"quantity"`
	QuantityUnit       string                 `bson:"quantityUnit"`
	Type               domain.FoodType        `bson:"type"`
	ExpiryDate         time.Time              `bson:"expiryDate"`
	Images             []string               `bson:"images"`
	Address            domain.Address         `bson:"address"`
	Status             domain.DonationStatus  `bson:"status"`
	Donor              string                 `bson:"donor"`
	Recipient          string                 `bson:"recipient,omitempty"`
	DietaryInfo        domain.DietaryInfo     `bson:"dietaryInfo"`
	PickupTime         *domain.PickupTime     `bson:"pickupTime,omitempty"`
	PickupInstructions string                 `bson:"pickupInstructions,omitempty"`
	CreatedAt          time.Time              `bson:"createdAt"`
	UpdatedAt          time.Time              `bson:"updatedAt"`
}

func toDoc(d *domain.Donation) donationDoc {
	return donationDoc{
		Title:              d.Title,
		Description:        d.Description,
		Quantity:           d.Quantity,
		QuantityUnit:       d.QuantityUnit,
		Type:               d.Type,
		ExpiryDate:         d.ExpiryDate.UTC(),
		Images:             d.Images,
		Address:            d.Address,
		Status:             d.Status,
		Donor:              d.Donor,
		Recipient:          d.Recipient,
		DietaryInfo:        d.DietaryInfo,
		PickupTime:         d.PickupTime,
		PickupInstructions: d.PickupInstructions,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}
}

func (doc donationDoc) toDomain() *domain.Donation {
	return &domain.Donation{
		ID:                 doc.ID.Hex(),
		Title:              doc.Title,
		Description:        doc.Description,
		Quantity:           doc.Quantity,
		QuantityUnit:       doc.QuantityUnit,
		Type:               doc.Type,
		ExpiryDate:         doc.ExpiryDate,
		Images:             doc.Images,
		Address:            doc.Address,
		Status:             doc.Status,
		Donor:              doc.Donor,
		Recipient:          doc.Recipient,
		DietaryInfo:        doc.DietaryInfo,
		PickupTime:         doc.PickupTime,
		PickupInstructions: doc.PickupInstructions,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

// Create inserts a new donation document and returns it with its assigned id.
func (r *DonationRepository) Create(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toDoc(d))
	if err != nil {
		return nil, err
	}

	created := *d
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

// FindByID retrieves a donation by its hex id.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (*domain.Donation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDonationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc donationDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// List runs the typed query against the collection: the same filter drives
// both the page fetch and the total count.
func (r *DonationRepository) List(ctx context.Context, q query.Query) ([]*domain.Donation, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := filterToBSON(q.Conditions)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sortToBSON(q.Sort)).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))
	if len(q.Select) > 0 {
		projection := bson.D{}
		for _, field := range q.Select {
			projection = append(projection, bson.E{Key: field, Value: 1})
		}
		opts.SetProjection(projection)
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []donationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	donations := make([]*domain.Donation, len(docs))
	for i, doc := range docs {
		donations[i] = doc.toDomain()
	}
	return donations, total, nil
}

// Update applies the non-nil fields of upd via $set and returns the updated
// document.
func (r *DonationRepository) Update(ctx context.Context, id string, upd ports.DonationUpdate) (*domain.Donation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDonationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Quantity != nil {
		set["quantity"] = *upd.Quantity
	}
	if upd.QuantityUnit != nil {
		set["quantityUnit"] = *upd.QuantityUnit
	}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}
	if upd.ExpiryDate != nil {
		set["expiryDate"] = upd.ExpiryDate.UTC()
	}
	if upd.Images != nil {
		set["images"] = *upd.Images
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.DietaryInfo != nil {
		set["dietaryInfo"] = *upd.DietaryInfo
	}
	if upd.PickupTime != nil {
		set["pickupTime"] = *upd.PickupTime
	}
	if upd.PickupInstructions != nil {
		set["pickupInstructions"] = *upd.PickupInstructions
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc donationDoc
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// Delete removes the donation unconditionally.
func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDonationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrDonationNotFound
	}
	return nil
}

// Reserve performs the reservation as one conditional update: the filter
// matches only while status is still "available", so concurrent callers
// cannot both claim the same donation. A non-matching update is resolved to
// not-found vs already-taken with a follow-up existence check.
func (r *DonationRepository) Reserve(ctx context.Context, id, recipientID string) (*domain.Donation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDonationNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": oid, "status": domain.StatusAvailable}
	update := bson.M{"$set": bson.M{
		"status":    domain.StatusReserved,
		"recipient": recipientID,
		"updatedAt": time.Now().UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc donationDoc
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return nil, domain.ErrNotAvailable
}

// EnsureIndexes creates the indexes the listing and reservation paths rely on.
func (r *DonationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "donor", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// filterToBSON translates typed conditions into their Mongo equivalents.
// Only the allow-listed operators ever appear here.
func filterToBSON(conditions []query.Condition) bson.M {
	filter := bson.M{}
	for _, c := range conditions {
		switch c.Op {
		case query.OpGt:
			mergeRange(filter, c.Field, "$gt", c.Value)
		case query.OpGte:
			mergeRange(filter, c.Field, "$gte", c.Value)
		case query.OpLt:
			mergeRange(filter, c.Field, "$lt", c.Value)
		case query.OpLte:
			mergeRange(filter, c.Field, "$lte", c.Value)
		case query.OpIn:
			filter[c.Field] = bson.M{"$in": c.Value}
		default:
			filter[c.Field] = c.Value
		}
	}
	return filter
}

// mergeRange allows two range operators on the same field, e.g.
// quantity[gte]=5&quantity[lte]=20.
func mergeRange(filter bson.M, field, op string, value any) {
	if existing, ok := filter[field].(bson.M); ok {
		existing[op] = value
		return
	}
	filter[field] = bson.M{op: value}
}

func sortToBSON(fields []query.SortField) bson.D {
	sort := bson.D{}
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: f.Field, Value: dir})
	}
	return sort
}
