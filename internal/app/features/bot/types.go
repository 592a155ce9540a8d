// internal/app/features/bot/types.go
package bot

import (
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Response shapes for the bot surface. The consumer here is the bot
// process, not a browser, so snowflakes stay JSON numbers and
// entitlements arrive pre-grouped by entity type for lookup checks.

type botCollection struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Image        *string      `json:"image"`
	Owner        int64        `json:"owner"`
	PublishState string       `json:"publish_state"`
	Tags         []string     `json:"tags"`
	Aliases      []botAlias   `json:"aliases"`
	Snippets     []botSnippet `json:"snippets"`
}

type botAlias struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Code                string             `json:"code"`
	Docs                string             `json:"docs"`
	GroupedEntitlements map[string][]int64 `json:"grouped_entitlements"`
	ParentID            *string            `json:"parent_id"`
	Subcommands         []botAlias         `json:"subcommands"`
}

type botSnippet struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Code                string             `json:"code"`
	Docs                string             `json:"docs"`
	GroupedEntitlements map[string][]int64 `json:"grouped_entitlements"`
}

type botCollectionSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Owner        int64    `json:"owner"`
	PublishState string   `json:"publish_state"`
	AliasIDs     []string `json:"alias_ids"`
	SnippetIDs   []string `json:"snippet_ids"`
	Tags         []string `json:"tags"`
}

type botSubscription struct {
	Type            string           `json:"type"`
	SubscriberID    int64            `json:"subscriber_id"`
	ObjectID        string           `json:"object_id"`
	AliasBindings   []models.Binding `json:"alias_bindings"`
	SnippetBindings []models.Binding `json:"snippet_bindings"`
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func hexPtr(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	h := id.Hex()
	return &h
}

func newBotSnippet(sn *workshopstore.Snippet) botSnippet {
	return botSnippet{
		ID:                  sn.ID.Hex(),
		Name:                sn.Name,
		Code:                sn.Code,
		Docs:                sn.Docs,
		GroupedEntitlements: sn.GroupedEntitlements(),
	}
}

func newBotSummary(c *workshopstore.Collection) botCollectionSummary {
	return botCollectionSummary{
		ID:           c.ID.Hex(),
		Name:         c.Name,
		Description:  c.Description,
		Owner:        c.Owner,
		PublishState: string(c.PublishState),
		AliasIDs:     hexIDs(c.AliasIDs),
		SnippetIDs:   hexIDs(c.SnippetIDs),
		Tags:         c.Tags,
	}
}

func newBotSubscription(sub models.Subscription) botSubscription {
	aliasBindings := sub.AliasBindings
	if aliasBindings == nil {
		aliasBindings = []models.Binding{}
	}
	snippetBindings := sub.SnippetBindings
	if snippetBindings == nil {
		snippetBindings = []models.Binding{}
	}
	return botSubscription{
		Type:            sub.Type,
		SubscriberID:    sub.SubscriberID,
		ObjectID:        sub.ObjectID.Hex(),
		AliasBindings:   aliasBindings,
		SnippetBindings: snippetBindings,
	}
}
