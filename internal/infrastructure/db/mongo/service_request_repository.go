package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eldercare/careconnect/internal/core/domain"
)

const requestsCollection = "service_requests"

type ServiceRequestRepository struct {
	col *mongo.Collection
}

func NewServiceRequestRepository(db *mongo.Database) *ServiceRequestRepository {
	return &ServiceRequestRepository{col: db.Collection(requestsCollection)}
}

type caregiverDoc struct {
	ID    string `bson:"id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

type requestDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         string             `bson:"user_id"`
	UserName       string             `bson:"user_name"`
	UserEmail      string             `bson:"user_email"`
	ServiceType    string             `bson:"service_type"`
	Requirements   string             `bson:"requirements"`
	Cost           float64            `bson:"cost"`
	Status         string             `bson:"status"`
	CreatedAt      time.Time          `bson:"created_at"`
	Caregiver      *caregiverDoc      `bson:"caregiver,omitempty"`
	DecidedAt      *time.Time         `bson:"decided_at,omitempty"`
	IdempotencyKey string             `bson:"idempotency_key,omitempty"`
}

func requestIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys: bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
	}
}

// Create inserts a new request document and assigns its id.
func (r *ServiceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toRequestDoc(req)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("insert service request: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid.Hex()
	}
	return nil
}

func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRequestNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ServiceRequestRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// ListByStatus returns every request in status, oldest first.
func (r *ServiceRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"status": string(status)}, opts)
	if err != nil {
		return nil, fmt.Errorf("find service requests: %w", err)
	}
	defer cur.Close(ctx)

	var docs []requestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode service requests: %w", err)
	}

	out := make([]*domain.ServiceRequest, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Decide atomically moves a still-pending request to status. The filter on
// status makes concurrent decisions first-writer-wins.
func (r *ServiceRequestRepository) Decide(ctx context.Context, id string, status domain.RequestStatus, cg domain.Caregiver) (*domain.ServiceRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRequestNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"_id": oid, "status": string(domain.StatusPending)}
	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"caregiver":  caregiverDoc{ID: cg.ID, Name: cg.Name, Email: cg.Email},
		"decided_at": now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc requestDoc
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("decide service request: %w", err)
	}

	// Nothing matched: either the id is unknown or someone decided first.
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("decide service request: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrRequestNotFound
	}
	return nil, domain.ErrAlreadyDecided
}

func toRequestDoc(req *domain.ServiceRequest) requestDoc {
	doc := requestDoc{
		UserID:         req.UserID,
		UserName:       req.UserName,
		UserEmail:      req.UserEmail,
		ServiceType:    string(req.ServiceType),
		Requirements:   req.Requirements,
		Cost:           req.Cost,
		Status:         string(req.Status),
		CreatedAt:      req.CreatedAt.UTC(),
		DecidedAt:      req.DecidedAt,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Caregiver != nil {
		doc.Caregiver = &caregiverDoc{ID: req.Caregiver.ID, Name: req.Caregiver.Name, Email: req.Caregiver.Email}
	}
	return doc
}

func (d requestDoc) toDomain() *domain.ServiceRequest {
	req := &domain.ServiceRequest{
		ID:             d.ID.Hex(),
		UserID:         d.UserID,
		UserName:       d.UserName,
		UserEmail:      d.UserEmail,
		ServiceType:    domain.ServiceType(d.ServiceType),
		Requirements:   d.Requirements,
		Cost:           d.Cost,
		Status:         domain.RequestStatus(d.Status),
		CreatedAt:      d.CreatedAt.UTC(),
		DecidedAt:      d.DecidedAt,
		IdempotencyKey: d.IdempotencyKey,
	}
	if d.Caregiver != nil {
		req.Caregiver = &domain.Caregiver{ID: d.Caregiver.ID, Name: d.Caregiver.Name, Email: d.Caregiver.Email}
	}
	return req
}
