package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmontero/liveauction/internal/auction/application"
	"github.com/rmontero/liveauction/internal/auction/domain"
	"github.com/rmontero/liveauction/internal/auction/infra/repository/memory"
	sharedws "github.com/rmontero/liveauction/internal/shared/websocket"
)

// bidFixture wires the real arbiter, catalog and hub behind the session
// handler; only the transport is absent.
type bidFixture struct {
	handler *BidSessionHandler
	service application.AuctionService
	repo    *memory.ListingRepository
	hub     *sharedws.Hub
}

func newBidFixture(t *testing.T) *bidFixture {
	t.Helper()
	repo := memory.NewListingRepository()
	hub := sharedws.NewHub()
	broadcaster := NewHubBroadcaster(hub)

	placeBidUC := application.NewPlaceBidUseCase(repo, broadcaster)
	catalogUC := application.NewListingCatalogUseCase(repo, broadcaster)
	service := application.NewAuctionService(placeBidUC, catalogUC)

	return &bidFixture{
		handler: NewBidSessionHandler(service, hub),
		service: service,
		repo:    repo,
		hub:     hub,
	}
}

func (f *bidFixture) createListing(t *testing.T, id string, startingPrice float64) {
	t.Helper()
	_, err := f.service.CreateListing(context.Background(), application.CreateListingDTO{
		ID:            id,
		Name:          "Old clock",
		StartingPrice: startingPrice,
	})
	require.NoError(t, err)
}

func (f *bidFixture) join(listingID, clientID string) *sharedws.Client {
	client := sharedws.NewClient(nil, listingID, clientID)
	f.hub.Subscribe(client)
	return client
}

func recvError(t *testing.T, c *sharedws.Client) ErrorMessage {
	t.Helper()
	var msg ErrorMessage
	require.NoError(t, json.Unmarshal(<-c.Send, &msg))
	return msg
}

func recvUpdate(t *testing.T, c *sharedws.Client) ListingUpdateMessage {
	t.Helper()
	var msg ListingUpdateMessage
	require.NoError(t, json.Unmarshal(<-c.Send, &msg))
	return msg
}

func TestHandleBidMessage_AcceptedBidReachesAllSubscribers(t *testing.T) {
	f := newBidFixture(t)
	f.createListing(t, "item-x", 100)
	f.createListing(t, "item-y", 200)

	alice := f.join("item-x", "alice")
	viewer := f.join("item-x", "viewer")
	other := f.join("item-y", "other")

	f.handler.handleBidMessage(context.Background(), alice, []byte(`{"user":"alice","bid_amount":150}`))

	for _, c := range []*sharedws.Client{alice, viewer} {
		update := recvUpdate(t, c)
		assert.Equal(t, "item-x", update.ItemID)
		assert.Equal(t, 150.0, update.CurrentPrice)
		require.NotNil(t, update.HighestBidder)
		assert.Equal(t, "alice", *update.HighestBidder)
	}
	assert.Empty(t, other.Send, "subscriber of another listing must not be notified")
}

func TestHandleBidMessage_TooLowGoesOnlyToSubmitter(t *testing.T) {
	f := newBidFixture(t)
	f.createListing(t, "item-x", 100)

	bob := f.join("item-x", "bob")
	viewer := f.join("item-x", "viewer")

	f.handler.handleBidMessage(context.Background(), bob, []byte(`{"user":"bob","bid_amount":100}`))

	msg := recvError(t, bob)
	assert.Equal(t, domain.ErrBidTooLow.Error(), msg.Error)
	assert.Empty(t, viewer.Send)

	// State untouched.
	listing, err := f.repo.GetByID(context.Background(), "item-x")
	require.NoError(t, err)
	assert.Equal(t, 100.0, listing.CurrentPrice)
	assert.Nil(t, listing.HighestBidder)
}

func TestHandleBidMessage_MalformedMessage(t *testing.T) {
	f := newBidFixture(t)
	f.createListing(t, "item-x", 100)
	alice := f.join("item-x", "alice")

	f.handler.handleBidMessage(context.Background(), alice, []byte(`{not json`))

	msg := recvError(t, alice)
	assert.Equal(t, "invalid bid message format", msg.Error)
}

func TestHandleBidMessage_ValidationDistinctFromTooLow(t *testing.T) {
	f := newBidFixture(t)
	f.createListing(t, "item-x", 100)
	alice := f.join("item-x", "alice")

	tests := []struct {
		name    string
		payload string
	}{
		{"missing_user", `{"bid_amount":150}`},
		{"non_positive_amount", `{"user":"alice","bid_amount":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.handler.handleBidMessage(context.Background(), alice, []byte(tt.payload))
			msg := recvError(t, alice)
			assert.Equal(t, "bid requires a user and a positive bid_amount", msg.Error)
			assert.NotEqual(t, domain.ErrBidTooLow.Error(), msg.Error)
		})
	}
}

func TestHandleBidMessage_DeletedListing(t *testing.T) {
	f := newBidFixture(t)
	f.createListing(t, "item-x", 100)
	alice := f.join("item-x", "alice")

	// Deletion detaches alice; her in-flight message finds no listing and
	// no open channel to reply on.
	require.NoError(t, f.service.DeleteListing(context.Background(), "item-x"))
	assert.Empty(t, f.hub.ConnectionsFor("item-x"))

	require.NotPanics(t, func() {
		f.handler.handleBidMessage(context.Background(), alice, []byte(`{"user":"alice","bid_amount":150}`))
	})
}

func TestJoinRefusal(t *testing.T) {
	code, reason := joinRefusal(domain.ErrListingNotFound)
	assert.Equal(t, websocket.CloseUnsupportedData, code)
	assert.Equal(t, domain.ErrListingNotFound.Error(), reason)

	// Wrapped not-found still counts as the client's problem.
	code, _ = joinRefusal(fmt.Errorf("get listing: %w", domain.ErrListingNotFound))
	assert.Equal(t, websocket.CloseUnsupportedData, code)

	// A store failure must not masquerade as a missing listing.
	code, reason = joinRefusal(errors.New("connection refused"))
	assert.Equal(t, websocket.CloseInternalServerErr, code)
	assert.NotEqual(t, domain.ErrListingNotFound.Error(), reason)
}

func TestDeleteListing_ClosesSessionsWithReason(t *testing.T) {
	f := newBidFixture(t)
	f.createListing(t, "item-x", 100)

	alice := f.join("item-x", "alice")
	bob := f.join("item-x", "bob")

	require.NoError(t, f.service.DeleteListing(context.Background(), "item-x"))

	for _, c := range []*sharedws.Client{alice, bob} {
		_, open := <-c.Send
		assert.False(t, open, "subscriber channel closed when the listing is deleted")
	}
	assert.Empty(t, f.hub.ConnectionsFor("item-x"))
}
