package handler

import (
	"time"

	"pantry/internal/activity"
	"pantry/internal/grocery/models"
	identitymodels "pantry/internal/identity/models"
)

// ListResponse is the wire shape of a list.
type ListResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FromList converts a domain list to its HTTP response.
func FromList(list *models.List) ListResponse {
	return ListResponse{
		ID:        list.ID.String(),
		Name:      list.Name,
		OwnerID:   list.OwnerID.String(),
		CreatedAt: list.CreatedAt,
	}
}

// FromLists converts a slice of lists, preserving order.
func FromLists(lists []*models.List) []ListResponse {
	out := make([]ListResponse, 0, len(lists))
	for _, list := range lists {
		out = append(out, FromList(list))
	}
	return out
}

// ItemResponse is the wire shape of an item.
type ItemResponse struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity"`
	Completed bool      `json:"completed"`
	AddedBy   string    `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
}

// FromItem converts a domain item to its HTTP response. Attribution uses the
// display name snapshot, not the live account.
func FromItem(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID.String(),
		ListID:    item.ListID.String(),
		Name:      item.Name,
		Quantity:  item.Quantity,
		Completed: item.Completed,
		AddedBy:   item.AddedByDisplay,
		AddedAt:   item.AddedAt,
	}
}

// FromItems converts a slice of items, preserving order.
func FromItems(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// ListDetailResponse is the HTTP response for GET /lists/{listID}.
type ListDetailResponse struct {
	ListResponse
	Items []ItemResponse `json:"items"`
}

// MemberResponse is one entry in a list's member roster.
type MemberResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FromMembers converts the roster, preserving owner-first order.
func FromMembers(users []*identitymodels.User) []MemberResponse {
	out := make([]MemberResponse, 0, len(users))
	for _, user := range users {
		out = append(out, MemberResponse{
			ID:       user.ID.String(),
			Username: user.Username,
		})
	}
	return out
}

// ShareOutcomeResponse is the HTTP response for sharing operations. Policy
// refusals come back with applied=false and a notice, not an error status.
type ShareOutcomeResponse struct {
	Outcome string `json:"outcome"`
	Applied bool   `json:"applied"`
	Notice  string `json:"notice"`
}

// FromOutcome converts a share outcome to its HTTP response.
func FromOutcome(outcome models.ShareOutcome) ShareOutcomeResponse {
	return ShareOutcomeResponse{
		Outcome: string(outcome),
		Applied: outcome.Applied(),
		Notice:  outcome.Notice(),
	}
}

// ToggleResponse is the HTTP response for POST /items/{itemID}/toggle.
type ToggleResponse struct {
	Completed bool `json:"completed"`
}

// ActivityEntryResponse is one entry in a list's activity trail.
type ActivityEntryResponse struct {
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromActivity converts trail events, preserving newest-first order.
func FromActivity(events []activity.Event) []ActivityEntryResponse {
	out := make([]ActivityEntryResponse, 0, len(events))
	for _, event := range events {
		out = append(out, ActivityEntryResponse{
			ActorName: event.ActorName,
			Action:    string(event.Action),
			Subject:   event.Subject,
			CreatedAt: event.CreatedAt,
		})
	}
	return out
}
