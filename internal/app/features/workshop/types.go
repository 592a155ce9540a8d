// internal/app/features/workshop/types.go
package workshop

import (
	"strconv"
	"time"

	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Response shapes for the dashboard API. ObjectIDs render as hex strings
// and Discord snowflakes as decimal strings; JavaScript numbers cannot
// hold a full 64-bit snowflake.

type collectionDTO struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Image               *string   `json:"image"`
	Owner               string    `json:"owner"`
	AliasIDs            []string  `json:"alias_ids"`
	SnippetIDs          []string  `json:"snippet_ids"`
	PublishState        string    `json:"publish_state"`
	NumSubscribers      int       `json:"num_subscribers"`
	NumGuildSubscribers int       `json:"num_guild_subscribers"`
	LastEdited          time.Time `json:"last_edited"`
	CreatedAt           time.Time `json:"created_at"`
	Tags                []string  `json:"tags"`

	Aliases  []aliasSummaryDTO   `json:"aliases,omitempty"`
	Snippets []snippetSummaryDTO `json:"snippets,omitempty"`
}

type aliasSummaryDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ShortDocs     string   `json:"short_docs"`
	CollectionID  string   `json:"collection_id"`
	SubcommandIDs []string `json:"subcommand_ids"`
	ParentID      *string  `json:"parent_id"`
}

type aliasDTO struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Code          string               `json:"code"`
	Versions      []models.CodeVersion `json:"versions"`
	Docs          string               `json:"docs"`
	Entitlements  []entitlementDTO     `json:"entitlements"`
	CollectionID  string               `json:"collection_id"`
	SubcommandIDs []string             `json:"subcommand_ids"`
	ParentID      *string              `json:"parent_id"`

	Subcommands []aliasDTO     `json:"subcommands,omitempty"`
	Parent      *aliasDTO      `json:"parent,omitempty"`
	Collection  *collectionDTO `json:"collection,omitempty"`
}

type snippetSummaryDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ShortDocs    string `json:"short_docs"`
	CollectionID string `json:"collection_id"`
}

type snippetDTO struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Code         string               `json:"code"`
	Versions     []models.CodeVersion `json:"versions"`
	Docs         string               `json:"docs"`
	Entitlements []entitlementDTO     `json:"entitlements"`
	CollectionID string               `json:"collection_id"`
}

type entitlementDTO struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Required   bool   `json:"required"`
}

type bindingDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type subscriptionDTO struct {
	Type            string       `json:"type"`
	SubscriberID    string       `json:"subscriber_id"`
	ObjectID        string       `json:"object_id"`
	AliasBindings   []bindingDTO `json:"alias_bindings"`
	SnippetBindings []bindingDTO `json:"snippet_bindings"`
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

func snowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newCollectionDTO(c *workshopstore.Collection) collectionDTO {
	return collectionDTO{
		ID:                  c.ID.Hex(),
		Name:                c.Name,
		Description:         c.Description,
		Image:               c.Image,
		Owner:               snowflake(c.Owner),
		AliasIDs:            hexIDs(c.AliasIDs),
		SnippetIDs:          hexIDs(c.SnippetIDs),
		PublishState:        string(c.PublishState),
		NumSubscribers:      c.NumSubscribers,
		NumGuildSubscribers: c.NumGuildSubscribers,
		LastEdited:          c.LastEdited,
		CreatedAt:           c.CreatedAt,
		Tags:                c.Tags,
	}
}

func newAliasSummary(a *workshopstore.Alias) aliasSummaryDTO {
	return aliasSummaryDTO{
		ID:            a.ID.Hex(),
		Name:          a.Name,
		ShortDocs:     a.ShortDocs(),
		CollectionID:  a.CollectionID.Hex(),
		SubcommandIDs: hexIDs(a.SubcommandIDs),
		ParentID:      hexPtr(a.ParentID),
	}
}

func newAliasDTO(a *workshopstore.Alias) aliasDTO {
	versions := a.Versions
	if versions == nil {
		versions = []models.CodeVersion{}
	}
	return aliasDTO{
		ID:            a.ID.Hex(),
		Name:          a.Name,
		Code:          a.Code,
		Versions:      versions,
		Docs:          a.Docs,
		Entitlements:  newEntitlementDTOs(a.Entitlements),
		CollectionID:  a.CollectionID.Hex(),
		SubcommandIDs: hexIDs(a.SubcommandIDs),
		ParentID:      hexPtr(a.ParentID),
	}
}

func newSnippetSummary(sn *workshopstore.Snippet) snippetSummaryDTO {
	return snippetSummaryDTO{
		ID:           sn.ID.Hex(),
		Name:         sn.Name,
		ShortDocs:    sn.ShortDocs(),
		CollectionID: sn.CollectionID.Hex(),
	}
}

func newSnippetDTO(sn *workshopstore.Snippet) snippetDTO {
	versions := sn.Versions
	if versions == nil {
		versions = []models.CodeVersion{}
	}
	return snippetDTO{
		ID:           sn.ID.Hex(),
		Name:         sn.Name,
		Code:         sn.Code,
		Versions:     versions,
		Docs:         sn.Docs,
		Entitlements: newEntitlementDTOs(sn.Entitlements),
		CollectionID: sn.CollectionID.Hex(),
	}
}

func newEntitlementDTOs(ents []models.RequiredEntitlement) []entitlementDTO {
	out := make([]entitlementDTO, 0, len(ents))
	for _, e := range ents {
		out = append(out, entitlementDTO{
			EntityType: e.EntityType,
			EntityID:   snowflake(e.EntityID),
			Required:   e.Required,
		})
	}
	return out
}

func newBindingDTOs(bindings []models.Binding) []bindingDTO {
	out := make([]bindingDTO, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, bindingDTO{ID: b.ID.Hex(), Name: b.Name})
	}
	return out
}

func newSubscriptionDTO(sub models.Subscription) subscriptionDTO {
	return subscriptionDTO{
		Type:            sub.Type,
		SubscriberID:    snowflake(sub.SubscriberID),
		ObjectID:        sub.ObjectID.Hex(),
		AliasBindings:   newBindingDTOs(sub.AliasBindings),
		SnippetBindings: newBindingDTOs(sub.SnippetBindings),
	}
}
