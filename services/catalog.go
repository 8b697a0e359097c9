package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"washcenter-backend/cache"
	"washcenter-backend/models"
	"washcenter-backend/obs"
	"washcenter-backend/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("washcenter-backend/services")

// CenterInput carries center fields. On create a nil field takes its
// default; on update a nil field leaves the stored value unchanged.
type CenterInput struct {
	Name        *string
	Location    *string
	Services    *string // comma separated
	Description *string
	Contact     *string
	Price       *float64
	Rating      *float64
	DistanceKm  *float64

	// ClearDistanceKm resets a stored distance to unknown. A nil DistanceKm
	// alone leaves it unchanged.
	ClearDistanceKm bool
}

// CenterCatalog is the source of truth for centers.
type CenterCatalog struct {
	store store.CenterStore
	cache cache.CenterCache
	now   func() time.Time
}

// NewCenterCatalog builds a catalog. c may be nil to disable caching.
func NewCenterCatalog(s store.CenterStore, c cache.CenterCache) *CenterCatalog {
	return &CenterCatalog{store: s, cache: c, now: time.Now}
}

// UpsertCenter creates a center when existingID is uuid.Nil and updates the
// stored record in place otherwise.
func (cc *CenterCatalog) UpsertCenter(ctx context.Context, in CenterInput, existingID uuid.UUID) (center *models.Center, err error) {
	ctx, span := tracer.Start(ctx, "CenterCatalog.UpsertCenter")
	defer func() { obs.Fail(span, err); span.End() }()

	if existingID == uuid.Nil {
		center, err = cc.create(ctx, in)
	} else {
		span.SetAttributes(attribute.String("center.id", existingID.String()))
		center, err = cc.update(ctx, in, existingID)
	}
	if err != nil {
		return nil, err
	}
	cc.invalidate(ctx)
	return center, nil
}

func (cc *CenterCatalog) create(ctx context.Context, in CenterInput) (*models.Center, error) {
	now := cc.now()
	c := models.Center{
		ID:        uuid.New(),
		Services:  models.StringList{},
		Rating:    models.DefaultCenterRating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCenterInput(&c, in)
	if err := validateCenter(&c); err != nil {
		return nil, err
	}
	if err := cc.store.CreateCenter(ctx, &c); err != nil {
		return nil, &StorageError{Op: "create center", Err: err}
	}
	log.Printf("[catalog] center %s created (%s)", c.ID, c.Name)
	return &c, nil
}

func (cc *CenterCatalog) update(ctx context.Context, in CenterInput, id uuid.UUID) (*models.Center, error) {
	updated, err := cc.store.UpdateCenter(ctx, id, func(c *models.Center) error {
		applyCenterInput(c, in)
		if err := validateCenter(c); err != nil {
			return err
		}
		c.UpdatedAt = cc.now()
		return nil
	})
	if err != nil {
		return nil, fromStore("update center", "center", id, err)
	}
	log.Printf("[catalog] center %s updated", id)
	return updated, nil
}

// RemoveCenter deletes a center. Bookings that reference it keep their
// snapshot fields.
func (cc *CenterCatalog) RemoveCenter(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "CenterCatalog.RemoveCenter",
		traceAttr("center.id", id.String()))
	defer func() { obs.Fail(span, err); span.End() }()

	if err := cc.store.DeleteCenter(ctx, id); err != nil {
		return fromStore("delete center", "center", id, err)
	}
	cc.invalidate(ctx)
	log.Printf("[catalog] center %s removed", id)
	return nil
}

func (cc *CenterCatalog) GetCenter(ctx context.Context, id uuid.UUID) (*models.Center, error) {
	c, err := cc.store.GetCenter(ctx, id)
	if err != nil {
		return nil, fromStore("get center", "center", id, err)
	}
	return c, nil
}

// ListCenters returns a fresh slice of the centers matching query, ordered
// by sortKey.
func (cc *CenterCatalog) ListCenters(ctx context.Context, query string, sortKey SortKey) (list []models.Center, err error) {
	ctx, span := tracer.Start(ctx, "CenterCatalog.ListCenters",
		traceAttr("query.sort", string(sortKey)))
	defer func() { obs.Fail(span, err); span.End() }()

	all, err := cc.all(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAndSort(all, query, sortKey), nil
}

// FindByName returns the centers whose name equals name ignoring case. It
// reads the store directly: bookings must never resolve against a cached list.
func (cc *CenterCatalog) FindByName(ctx context.Context, name string) ([]models.Center, error) {
	all, err := cc.fromStore(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	var out []models.Center
	for _, c := range all {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (cc *CenterCatalog) all(ctx context.Context) ([]models.Center, error) {
	if cc.cache == nil {
		return cc.fromStore(ctx)
	}

	centers, err := cc.cache.GetCenters(ctx)
	if err == nil {
		return centers, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Printf("[catalog] cache read failed: %v", err)
	}

	// The generation is read before the store so a write that lands in
	// between makes the fill below a no-op.
	gen, genErr := cc.cache.Generation(ctx)
	centers, err = cc.fromStore(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		log.Printf("[catalog] cache generation read failed: %v", genErr)
		return centers, nil
	}
	if err := cc.cache.SetCenters(ctx, centers, gen); err != nil && !errors.Is(err, cache.ErrStale) {
		log.Printf("[catalog] cache write failed: %v", err)
	}
	return centers, nil
}

func (cc *CenterCatalog) fromStore(ctx context.Context) ([]models.Center, error) {
	centers, err := cc.store.ListCenters(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list centers", Err: err}
	}
	return centers, nil
}

func (cc *CenterCatalog) invalidate(ctx context.Context) {
	if cc.cache == nil {
		return
	}
	if err := cc.cache.InvalidateCenters(ctx); err != nil {
		log.Printf("[catalog] cache invalidation failed: %v", err)
	}
}

func applyCenterInput(c *models.Center, in CenterInput) {
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Location != nil {
		c.Location = *in.Location
	}
	if in.Services != nil {
		c.Services = models.ParseServiceList(*in.Services)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Contact != nil {
		c.Contact = *in.Contact
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.Rating != nil {
		c.Rating = *in.Rating
	}
	if in.DistanceKm != nil {
		d := *in.DistanceKm
		c.DistanceKm = &d
	}
	if in.ClearDistanceKm {
		c.DistanceKm = nil
	}
}

func validateCenter(c *models.Center) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		return invalid("location", "is required")
	}
	if c.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if c.Rating < 0 || c.Rating > 5 {
		return invalid("rating", "must be between 0 and 5")
	}
	if c.DistanceKm != nil && *c.DistanceKm < 0 {
		return invalid("distanceKm", "must not be negative")
	}
	return nil
}
