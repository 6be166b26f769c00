package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/userdesk/userdesk/internal/users"
)

const (
	defaultItemsPerPage = 10
	defaultMessageTTL   = 3 * time.Second
)

// ErrDraftIncomplete is returned when a submit is attempted with an empty
// name or email. No request is sent in that case.
var ErrDraftIncomplete = errors.New("client: name and email are required")

// Controller holds a local view of the user list and reconciles it with
// server state after each mutation. All methods are safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	api    *Client
	logger *zap.Logger

	users   []users.User
	draft   users.User
	editing bool
	loading bool

	message    string
	messageGen int
	messageTTL time.Duration
	msgTimer   *time.Timer

	currentPage  int
	itemsPerPage int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithItemsPerPage sets the page size for the local pagination window.
func WithItemsPerPage(n int) ControllerOption {
	return func(c *Controller) {
		if n >= 1 {
			c.itemsPerPage = n
		}
	}
}

// WithMessageTTL sets how long a transient message stays visible.
func WithMessageTTL(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.messageTTL = d
	}
}

// NewController creates a controller backed by the given API client.
func NewController(api *Client, logger *zap.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:          api,
		logger:       logger,
		users:        make([]users.User, 0),
		currentPage:  1,
		itemsPerPage: defaultItemsPerPage,
		messageTTL:   defaultMessageTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close disarms the message timer. The controller must not be used after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messageGen++
	if c.msgTimer != nil {
		c.msgTimer.Stop()
		c.msgTimer = nil
	}
}

// Refresh replaces the local list with the server's. On failure the local
// list is left unchanged and the error is surfaced as a message.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	list, err := c.api.ListUsers(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.logger.Error("Failed to fetch users", zap.Error(err))
		c.setMessageLocked("Failed to fetch users: " + errorText(err))
		return err
	}

	if list == nil {
		list = make([]users.User, 0)
	}
	c.users = list
	c.clearMessageLocked()
	return nil
}

// SubmitCreate sends the draft as a new user. The non-empty pre-check mirrors
// the server-side validation but does not replace it. On success the list is
// re-fetched, the draft is reset, and the server's confirmation text is shown.
func (c *Controller) SubmitCreate(ctx context.Context) error {
	c.mu.Lock()
	name := strings.TrimSpace(c.draft.Name)
	email := strings.TrimSpace(c.draft.Email)
	if name == "" || email == "" {
		c.setMessageLocked("Name and email are required")
		c.mu.Unlock()
		return ErrDraftIncomplete
	}
	c.mu.Unlock()

	text, err := c.api.CreateUser(ctx, name, email)
	if err != nil {
		c.logger.Error("Failed to create user", zap.Error(err))
		c.mu.Lock()
		c.setMessageLocked(errorText(err))
		c.mu.Unlock()
		return err
	}

	// Refresh clears any message, so show the confirmation only afterwards.
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.draft = users.User{}
	c.setMessageLocked(text)
	c.mu.Unlock()
	return nil
}

// BeginEdit copies the target record into the draft and enters editing mode.
func (c *Controller) BeginEdit(record users.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = record
	c.editing = true
}

// CancelEdit resets the draft and leaves editing mode.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = users.User{}
	c.editing = false
}

// SubmitEdit sends the full draft to the update endpoint. On failure editing
// mode stays active so the user can retry.
func (c *Controller) SubmitEdit(ctx context.Context) error {
	c.mu.Lock()
	id := c.draft.ID
	name := strings.TrimSpace(c.draft.Name)
	email := strings.TrimSpace(c.draft.Email)
	if name == "" || email == "" {
		c.setMessageLocked("Name and email are required")
		c.mu.Unlock()
		return ErrDraftIncomplete
	}
	c.mu.Unlock()

	text, err := c.api.UpdateUser(ctx, id, name, email)
	if err != nil {
		c.logger.Error("Failed to update user", zap.Int64("user_id", id), zap.Error(err))
		c.mu.Lock()
		c.setMessageLocked(errorText(err))
		c.mu.Unlock()
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.draft = users.User{}
	c.editing = false
	c.setMessageLocked(text)
	c.mu.Unlock()
	return nil
}

// DeleteRecord deletes the record on the server and, on success, removes it
// from the local list directly without a full re-fetch.
func (c *Controller) DeleteRecord(ctx context.Context, record users.User) error {
	text, err := c.api.DeleteUser(ctx, record.ID)
	if err != nil {
		c.logger.Error("Failed to delete user", zap.Int64("user_id", record.ID), zap.Error(err))
		c.mu.Lock()
		c.setMessageLocked(errorText(err))
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, u := range c.users {
		if u.ID == record.ID {
			c.users = append(c.users[:i], c.users[i+1:]...)
			break
		}
	}
	c.setMessageLocked(text)
	return nil
}

// Users returns a copy of the cached user list.
func (c *Controller) Users() []users.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]users.User, len(c.users))
	copy(out, c.users)
	return out
}

// Draft returns the current draft record.
func (c *Controller) Draft() users.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraftName updates the draft's name field.
func (c *Controller) SetDraftName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Name = name
}

// SetDraftEmail updates the draft's email field.
func (c *Controller) SetDraftEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Email = email
}

// Editing reports whether a record is being edited.
func (c *Controller) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// Loading reports whether a list fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Message returns the current transient message, or "" when none is shown.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// CurrentPage returns the 1-based current page.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

// ItemsPerPage returns the page size.
func (c *Controller) ItemsPerPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsPerPage
}

// SetItemsPerPage changes the page size. The current page is intentionally
// left as-is, so the window may land past the end of the list.
func (c *Controller) SetItemsPerPage(n int) {
	if n < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.itemsPerPage = n
}

// TotalPages returns ceil(len(users)/itemsPerPage) with a floor of 1.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPagesLocked()
}

func (c *Controller) totalPagesLocked() int {
	pages := int(math.Ceil(float64(len(c.users)) / float64(c.itemsPerPage)))
	if pages < 1 {
		return 1
	}
	return pages
}

// Page returns the slice of users visible on the current page.
func (c *Controller) Page() []users.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := (c.currentPage - 1) * c.itemsPerPage
	if start >= len(c.users) {
		return []users.User{}
	}
	end := start + c.itemsPerPage
	if end > len(c.users) {
		end = len(c.users)
	}

	out := make([]users.User, end-start)
	copy(out, c.users[start:end])
	return out
}

// HasNextPage reports whether the next-page control should be enabled.
func (c *Controller) HasNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage < c.totalPagesLocked()
}

// HasPrevPage reports whether the previous-page control should be enabled.
func (c *Controller) HasPrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage > 1
}

// NextPage advances one page, stopping at the last page.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPage < c.totalPagesLocked() {
		c.currentPage++
	}
}

// PrevPage steps back one page, stopping at page 1.
func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPage > 1 {
		c.currentPage--
	}
}

// setMessageLocked shows a transient message and re-arms the clear timer.
// The generation counter keeps a stale timer from clearing a newer message.
// Callers must hold c.mu.
func (c *Controller) setMessageLocked(msg string) {
	c.messageGen++
	gen := c.messageGen
	c.message = msg

	if c.msgTimer != nil {
		c.msgTimer.Stop()
	}
	if c.messageTTL <= 0 {
		return
	}
	c.msgTimer = time.AfterFunc(c.messageTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.messageGen == gen {
			c.message = ""
		}
	})
}

// clearMessageLocked removes the message and disarms the timer.
// Callers must hold c.mu.
func (c *Controller) clearMessageLocked() {
	c.messageGen++
	c.message = ""
	if c.msgTimer != nil {
		c.msgTimer.Stop()
		c.msgTimer = nil
	}
}

// errorText extracts the server-supplied message from an *APIError so it can
// be surfaced verbatim; other errors fall back to a generic description.
func errorText(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return fmt.Sprintf("Request failed: %v", err)
}
