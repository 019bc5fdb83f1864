package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-nft-ticketing/internal/events"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
)

type MockEventDB struct {
	mock.Mock
}

func (m *MockEventDB) CreateEvent(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventDB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventDB) UpdateEvent(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventDB) PublishEvent(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockEventDB) ListPublishedEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventDB) ListEventsByCreator(ctx context.Context, creatorID string) ([]models.Event, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) PublishEventUpdated(event models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func newService(db *MockEventDB, images *MockImageStore, feed *MockFeed) *events.EventService {
	return events.NewEventService(db, images, feed, logger.NewLogger())
}

func validRequest() events.CreateEventRequest {
	return events.CreateEventRequest{
		Title:        "Summer Fest",
		Description:  "Annual festival",
		Date:         time.Now().Add(30 * 24 * time.Hour),
		Location:     "Riverside Park",
		BasePrice:    45,
		TotalTickets: 500,
		NFTsEnabled:  true,
	}
}

func TestCreateEvent(t *testing.T) {
	mockDB := new(MockEventDB)
	svc := newService(mockDB, new(MockImageStore), new(MockFeed))

	mockDB.On("CreateEvent", mock.Anything, mock.Anything).Return(nil)

	event, err := svc.CreateEvent(context.Background(), "creator1", validRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "creator1", event.CreatorID)
	assert.False(t, event.IsPublished, "new events start unpublished")
	assert.Zero(t, event.TicketsSold)
}

func TestCreateEventValidation(t *testing.T) {
	svc := newService(new(MockEventDB), new(MockImageStore), new(MockFeed))

	noTitle := validRequest()
	noTitle.Title = ""
	_, err := svc.CreateEvent(context.Background(), "creator1", noTitle)
	assert.Error(t, err)

	noCapacity := validRequest()
	noCapacity.TotalTickets = 0
	_, err = svc.CreateEvent(context.Background(), "creator1", noCapacity)
	assert.Error(t, err)
}

func TestUpdateEventCapacityFloor(t *testing.T) {
	mockDB := new(MockEventDB)
	svc := newService(mockDB, new(MockImageStore), new(MockFeed))

	mockDB.On("GetEventByID", mock.Anything, "event1").Return(&models.Event{
		ID:           "event1",
		CreatorID:    "creator1",
		TotalTickets: 100,
		TicketsSold:  80,
	}, nil)

	req := validRequest()
	req.TotalTickets = 50 // below what is already sold

	_, err := svc.UpdateEvent(context.Background(), "event1", "creator1", req)
	assert.Error(t, err)
	mockDB.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything)
}

func TestUpdateEventRequiresCreator(t *testing.T) {
	mockDB := new(MockEventDB)
	svc := newService(mockDB, new(MockImageStore), new(MockFeed))

	mockDB.On("GetEventByID", mock.Anything, "event1").Return(&models.Event{
		ID:        "event1",
		CreatorID: "creator1",
	}, nil)

	_, err := svc.UpdateEvent(context.Background(), "event1", "intruder", validRequest())
	assert.ErrorIs(t, err, events.ErrNotCreator)
}

func TestPublishIsOneWay(t *testing.T) {
	mockDB := new(MockEventDB)
	mockFeed := new(MockFeed)
	svc := newService(mockDB, new(MockImageStore), mockFeed)

	mockDB.On("GetEventByID", mock.Anything, "event1").Return(&models.Event{
		ID:        "event1",
		CreatorID: "creator1",
	}, nil)
	mockDB.On("PublishEvent", mock.Anything, "event1").Return(1, nil).Once()
	mockFeed.On("PublishEventUpdated", mock.Anything).Return(nil)

	require.NoError(t, svc.Publish(context.Background(), "event1", "creator1"))

	// Second publish touches nothing.
	mockDB.On("PublishEvent", mock.Anything, "event1").Return(0, nil)
	err := svc.Publish(context.Background(), "event1", "creator1")
	assert.ErrorIs(t, err, events.ErrAlreadyPublished)
}

func TestUploadCoverImage(t *testing.T) {
	mockDB := new(MockEventDB)
	mockImages := new(MockImageStore)
	svc := newService(mockDB, mockImages, new(MockFeed))

	mockDB.On("GetEventByID", mock.Anything, "event1").Return(&models.Event{
		ID:        "event1",
		CreatorID: "creator1",
	}, nil)
	mockImages.On("Upload", mock.Anything, []byte("png-bytes")).Return("ipfs://cover-cid", nil)
	mockDB.On("UpdateEvent", mock.Anything, mock.MatchedBy(func(e models.Event) bool {
		return e.ImageURL == "ipfs://cover-cid"
	})).Return(nil)

	uri, err := svc.UploadCoverImage(context.Background(), "event1", "creator1", []byte("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "ipfs://cover-cid", uri)
	mockDB.AssertExpectations(t)
}

func TestSuggestPrice(t *testing.T) {
	mockDB := new(MockEventDB)
	svc := newService(mockDB, new(MockImageStore), new(MockFeed))

	mockDB.On("GetEventByID", mock.Anything, "event1").Return(&models.Event{
		ID:           "event1",
		BasePrice:    100,
		TotalTickets: 100,
		TicketsSold:  50,
		Date:         time.Now().Add(30 * 24 * time.Hour),
	}, nil)

	price, err := svc.SuggestPrice(context.Background(), "event1")
	require.NoError(t, err)
	assert.Equal(t, "115", price.String())
}
