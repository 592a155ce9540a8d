// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureCollections(ctx, db); err != nil {
		problems = append(problems, "workshop_collections: "+err.Error())
	}
	if err := ensureAliases(ctx, db); err != nil {
		problems = append(problems, "workshop_aliases: "+err.Error())
	}
	if err := ensureSnippets(ctx, db); err != nil {
		problems = append(problems, "workshop_snippets: "+err.Error())
	}
	if err := ensureSubscriptions(ctx, db); err != nil {
		problems = append(problems, "workshop_subscriptions: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "analytics_alias_events: "+err.Error())
	}
	if err := ensureOAuthStates(ctx, db); err != nil {
		problems = append(problems, "oauth_states: "+err.Error())
	}
	if err := ensureAPITokens(ctx, db); err != nil {
		problems = append(problems, "api_tokens: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := false
	bv := false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// uniqueFailureHint points at the dedupe query for unique indexes that are
// known to collide on upgraded databases.
func uniqueFailureHint(collName, desiredSig string) string {
	if collName == "workshop_subscriptions" && strings.Contains(desiredSig, "subscriber_id:1") {
		return " — duplicate subscription documents exist. Example finder:\n" +
			`db.workshop_subscriptions.aggregate([{ $group: { _id: { t: "$type", s: "$subscriber_id", o: "$object_id" }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`
	}
	return ""
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				desiredUnique = m.Options.Unique
			}
		}
		desiredSig := keySig(m.Keys.(bson.D))

		start := time.Now()
		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))

		existing := listExisting(ctx, coll)

		if ex, ok := existing[desiredSig]; ok {
			// Same key pattern exists already.
			if sameBoolPtr(desiredUnique, ex.Unique) {
				// Name alignment: if the name differs, drop & recreate with the desired name.
				if desiredName != "" && ex.Name != desiredName {
					zap.L().Info("renaming index to align with desired name",
						zap.String("collection", coll.Name()),
						zap.String("from", ex.Name),
						zap.String("to", desiredName),
						zap.String("keys", desiredSig))

					if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
						zap.L().Warn("drop existing index (rename) failed",
							zap.String("collection", coll.Name()),
							zap.String("name", ex.Name),
							zap.Error(err))
						errs = append(errs, fmt.Sprintf("%s(%s): rename drop failed: %v", coll.Name(), desiredName, err))
						continue
					}
					if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
						zap.L().Warn("create index (rename) failed",
							zap.String("collection", coll.Name()),
							zap.String("name", desiredName),
							zap.Error(err))
						errs = append(errs, fmt.Sprintf("%s(%s): rename create failed: %v", coll.Name(), desiredName, err))
						continue
					}
					zap.L().Info("index renamed",
						zap.String("collection", coll.Name()),
						zap.String("name", desiredName),
						zap.String("keys", desiredSig),
						zap.String("took", time.Since(start).String()))
					continue
				}

				// Names aligned (or we don't care) → reuse
				zap.L().Info("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Bool("unique", ex.Unique != nil && *ex.Unique),
					zap.String("took", time.Since(start).String()))
				continue
			}

			// Options mismatch (e.g., upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
					hint := uniqueFailureHint(coll.Name(), desiredSig)
					errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s", coll.Name(), desiredName, hint))
				} else {
					errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				}
				continue
			}
			zap.L().Info("index dropped and recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		// No existing index with the same keys: create it.
		created, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			zap.L().Info("index ensured",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("created_name", created),
				zap.String("keys", desiredSig),
				zap.Bool("unique", desiredUnique != nil && *desiredUnique),
				zap.String("took", time.Since(start).String()))
			continue
		}

		if isOptionsConflictErr(err) {
			// An index with these keys appeared (or was hiding) under other
			// options. Reconcile against the fresh listing.
			match, found := listExisting(ctx, coll)[desiredSig]
			if found {
				if sameBoolPtr(desiredUnique, match.Unique) {
					zap.L().Info("reusing existing index (post-conflict)",
						zap.String("collection", coll.Name()),
						zap.String("name", match.Name),
						zap.String("keys", desiredSig),
						zap.Bool("unique", match.Unique != nil && *match.Unique),
						zap.String("took", time.Since(start).String()))
					continue
				}
				if _, dropErr := coll.Indexes().DropOne(ctx, match.Name); dropErr != nil {
					zap.L().Warn("failed to drop conflicting index",
						zap.String("collection", coll.Name()),
						zap.String("name", match.Name),
						zap.Error(dropErr))
				}
				if _, e2 := coll.Indexes().CreateOne(ctx, m); e2 != nil {
					if isDuplicateKeyErr(e2) && desiredUnique != nil && *desiredUnique {
						hint := uniqueFailureHint(coll.Name(), desiredSig)
						errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)%s", coll.Name(), desiredName, hint))
					} else {
						errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, e2))
					}
					continue
				}
				zap.L().Info("index dropped and recreated (post-conflict)",
					zap.String("collection", coll.Name()),
					zap.String("name", desiredName),
					zap.String("keys", desiredSig),
					zap.Bool("unique", desiredUnique != nil && *desiredUnique),
					zap.String("took", time.Since(start).String()))
				continue
			}
		}

		zap.L().Warn("index ensure failed",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()),
			zap.Error(err))
		errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureCollections(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("workshop_collections")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// "my collections" lookups by owner snowflake
		{
			Keys:    bson.D{{Key: "owner", Value: 1}},
			Options: options.Index().SetName("idx_wc_owner"),
		},

		// Browse listing: filter by publish_state, prefix search on the
		// folded name, stable keyset tiebreak on _id.
		{
			Keys: bson.D{
				{Key: "publish_state", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_wc_state_nameci__id"),
		},
	})
}

func ensureAliases(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("workshop_aliases")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Cascade deletes and per-collection sweeps
		{
			Keys:    bson.D{{Key: "collection_id", Value: 1}},
			Options: options.Index().SetName("idx_wa_collection"),
		},
		// Subcommand lookups by parent
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}},
			Options: options.Index().SetName("idx_wa_parent"),
		},
	})
}

func ensureSnippets(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("workshop_snippets")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "collection_id", Value: 1}},
			Options: options.Index().SetName("idx_ws_collection"),
		},
	})
}

func ensureSubscriptions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("workshop_subscriptions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Uniqueness: one document per (type, subscriber, object). Guards
		// the insert race between the subscribed check and the write.
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "subscriber_id", Value: 1},
				{Key: "object_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_sub_type_subscriber_object"),
		},

		// "collections this user/guild has" listings
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "subscriber_id", Value: 1},
			},
			Options: options.Index().SetName("idx_sub_type_subscriber"),
		},

		// "who points at this collection" listings and cascade deletes
		{
			Keys:    bson.D{{Key: "object_id", Value: 1}},
			Options: options.Index().SetName("idx_sub_object"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("analytics_alias_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-collection recent activity (latest-first)
		{
			Keys:    bson.D{{Key: "object_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_events_object_ts"),
		},
		// Site-wide popularity windows by event type
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_events_type_ts"),
		},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("oauth_states")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Primary lookup by state
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_state"),
		},
		// TTL index for automatic cleanup
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_oauth_ttl"),
		},
	})
}

func ensureAPITokens(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("api_tokens")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Bearer verification looks tokens up by their public token_id
		{
			Keys:    bson.D{{Key: "token_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tokens_tokenid"),
		},
		// Dashboard token listings per user
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_tokens_user_created"),
		},
	})
}
