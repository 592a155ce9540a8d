// internal/app/store/workshop/collectable.go
package workshopstore

import (
	"context"
	"time"

	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// setCode appends a new code version to a collectable and makes it
// current. Version numbers grow monotonically from the highest existing
// version; gaps left by history edits are never reused. Two writes: the
// first clears is_current across the history, the second pushes the new
// version and replaces the active code.
func setCode(ctx context.Context, mc *mongo.Collection, data *models.Collectable, code string) (models.CodeVersion, error) {
	next := 1
	for _, v := range data.Versions {
		if v.Version >= next {
			next = v.Version + 1
		}
	}
	cv := models.CodeVersion{
		Version:   next,
		Content:   code,
		CreatedAt: time.Now().UTC(),
		IsCurrent: true,
	}

	if _, err := mc.UpdateByID(ctx, data.ID, bson.M{
		"$set": bson.M{"versions.$[].is_current": false},
	}); err != nil {
		return models.CodeVersion{}, err
	}
	if _, err := mc.UpdateByID(ctx, data.ID, bson.M{
		"$set":  bson.M{"code": code},
		"$push": bson.M{"versions": cv},
	}); err != nil {
		return models.CodeVersion{}, err
	}

	for i := range data.Versions {
		data.Versions[i].IsCurrent = false
	}
	data.Versions = append(data.Versions, cv)
	data.Code = code
	return cv, nil
}

// setDocs replaces a collectable's documentation.
func setDocs(ctx context.Context, mc *mongo.Collection, data *models.Collectable, docs string) error {
	if _, err := mc.UpdateByID(ctx, data.ID, bson.M{
		"$set": bson.M{"docs": docs},
	}); err != nil {
		return err
	}
	data.Docs = docs
	return nil
}

// addEntitlement attaches an entitlement requirement to a collectable.
// Adding an (entity_type, entity_id) pair that is already attached is a
// no-op and does not change its Required flag.
func addEntitlement(ctx context.Context, mc *mongo.Collection, data *models.Collectable, ent models.RequiredEntitlement) error {
	for _, existing := range data.Entitlements {
		if existing.EntityType == ent.EntityType && existing.EntityID == ent.EntityID {
			return nil
		}
	}
	if _, err := mc.UpdateByID(ctx, data.ID, bson.M{
		"$push": bson.M{"entitlements": ent},
	}); err != nil {
		return err
	}
	data.Entitlements = append(data.Entitlements, ent)
	return nil
}

// removeEntitlement detaches an entitlement requirement. Entries with the
// Required flag cannot be removed and yield a NotAllowedError. Removing a
// pair that is not attached is a no-op.
func removeEntitlement(ctx context.Context, mc *mongo.Collection, data *models.Collectable, entityType string, entityID int64) error {
	idx := -1
	for i, existing := range data.Entitlements {
		if existing.EntityType == entityType && existing.EntityID == entityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if data.Entitlements[idx].Required {
		return notAllowed(msgEntitlementLocked)
	}
	if _, err := mc.UpdateByID(ctx, data.ID, bson.M{
		"$pull": bson.M{"entitlements": bson.M{
			"entity_type": entityType,
			"entity_id":   entityID,
		}},
	}); err != nil {
		return err
	}
	data.Entitlements = append(data.Entitlements[:idx], data.Entitlements[idx+1:]...)
	return nil
}

// newCollectable builds the shared fields for a fresh alias or snippet.
// Slices start empty, not nil, so documents round-trip as [] rather than
// null.
func newCollectable(name string, collectionID primitive.ObjectID) models.Collectable {
	return models.Collectable{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Code:         "",
		Versions:     []models.CodeVersion{},
		Docs:         "",
		Entitlements: []models.RequiredEntitlement{},
		CollectionID: collectionID,
	}
}
