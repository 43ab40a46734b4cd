package game

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MaxKorjik/Mafia-Online/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerFixture struct {
	handler   *GameHandler
	roomRepo  *MockRoomRepo
	store     *MockRoomStore
	directory *Directory
	router    *gin.Engine
}

// newHandlerFixture wires the REST routes the way the server does, with a
// stub auth middleware stamping user id 7 on authenticated routes.
func newHandlerFixture() *handlerFixture {
	roomRepo := &MockRoomRepo{}
	store := &MockRoomStore{}
	directory := NewDirectory()
	handler := NewGameHandler(directory, roomRepo, store, &MockUserGetter{}, &MockTokenVerifier{})

	authed := func(ctx *gin.Context) { ctx.Set("id", int64(7)) }

	router := gin.New()
	router.GET("/api/rooms", handler.ListRoomsHandler)
	router.GET("/api/rooms/:roomid", handler.GetRoomHandler)
	router.GET("/api/leaderboard", handler.LeaderboardHandler)
	router.POST("/api/rooms", authed, handler.CreateRoomHandler)
	router.POST("/api/rooms/anon", handler.CreateRoomHandler)
	router.DELETE("/api/rooms/:roomid", authed, handler.DeleteRoomHandler)

	return &handlerFixture{
		handler:   handler,
		roomRepo:  roomRepo,
		store:     store,
		directory: directory,
		router:    router,
	}
}

func (f *handlerFixture) perform(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateRoomHandler(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		f := newHandlerFixture()
		w := f.perform(http.MethodPost, "/api/rooms/anon", `{"name":"basement","min_players":4,"max_players":8}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		f := newHandlerFixture()
		w := f.perform(http.MethodPost, "/api/rooms", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects bad configs", func(t *testing.T) {
		f := newHandlerFixture()
		bodies := []string{
			`{"name":"","min_players":4,"max_players":8}`,
			`{"name":"basement","min_players":3,"max_players":8}`,
			`{"name":"basement","min_players":4,"max_players":11}`,
			`{"name":"basement","min_players":8,"max_players":5}`,
		}
		for _, body := range bodies {
			w := f.perform(http.MethodPost, "/api/rooms", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, "invalid-room-configs", w.Body.String(), body)
		}
		f.roomRepo.AssertNotCalled(t, "CreateRoom")
	})

	t.Run("creates room and registers a session", func(t *testing.T) {
		f := newHandlerFixture()
		created := domain.Room{Id: 3, Name: "basement", Owner: 7, MinPlayers: 4, MaxPlayers: 8, Private: true, Active: true}
		f.roomRepo.On("CreateRoom", mock.Anything, "basement", int64(7), 4, 8, true).Return(created, nil)

		w := f.perform(http.MethodPost, "/api/rooms", `{"name":"basement","min_players":4,"max_players":8,"is_private":true}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":3,"name":"basement","owner":7,"min_players":4,"max_players":8,"is_private":true,"live_players":0}`, w.Body.String())

		session, err := f.directory.Lookup(3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), session.Owner())
		f.roomRepo.AssertExpectations(t)
	})
}

func TestListRoomsHandler(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()
	f.roomRepo.On("ListActiveRooms", mock.Anything).Return([]domain.Room{
		{Id: 1, Name: "basement", Owner: 7, MinPlayers: 4, MaxPlayers: 8, LivePlayers: 2},
	}, nil)

	w := f.perform(http.MethodGet, "/api/rooms", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"basement","owner":7,"min_players":4,"max_players":8,"is_private":false,"live_players":2}]`, w.Body.String())
}

func TestGetRoomHandler(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-numeric id", func(t *testing.T) {
		f := newHandlerFixture()
		w := f.perform(http.MethodGet, "/api/rooms/basement", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing room", func(t *testing.T) {
		f := newHandlerFixture()
		f.roomRepo.On("GetRoom", mock.Anything, int64(5)).Return(domain.Room{}, domain.ErrRoomNotFound)
		w := f.perform(http.MethodGet, "/api/rooms/5", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("found", func(t *testing.T) {
		f := newHandlerFixture()
		f.roomRepo.On("GetRoom", mock.Anything, int64(5)).Return(domain.Room{Id: 5, Name: "attic", Owner: 2, MinPlayers: 4, MaxPlayers: 6}, nil)
		w := f.perform(http.MethodGet, "/api/rooms/5", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestDeleteRoomHandler(t *testing.T) {
	t.Parallel()

	t.Run("only the owner may delete", func(t *testing.T) {
		f := newHandlerFixture()
		f.roomRepo.On("GetRoom", mock.Anything, int64(5)).Return(domain.Room{Id: 5, Owner: 2}, nil)

		w := f.perform(http.MethodDelete, "/api/rooms/5", "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		f.roomRepo.AssertNotCalled(t, "DeleteRoom")
	})

	t.Run("owner delete tears the session down", func(t *testing.T) {
		f := newHandlerFixture()
		f.directory.Add(NewSession(SessionConfig{Id: 5, Owner: 7, MinPlayers: 4, MaxPlayers: 8}, nil))
		f.roomRepo.On("GetRoom", mock.Anything, int64(5)).Return(domain.Room{Id: 5, Owner: 7}, nil)
		f.roomRepo.On("DeleteRoom", mock.Anything, int64(5)).Return(nil)

		w := f.perform(http.MethodDelete, "/api/rooms/5", "")

		assert.Equal(t, http.StatusOK, w.Code)
		_, err := f.directory.Lookup(5)
		assert.ErrorIs(t, err, ErrRoomNotFound)
		f.roomRepo.AssertExpectations(t)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	t.Parallel()
	f := newHandlerFixture()
	f.roomRepo.On("TopPlayers", mock.Anything, 10).Return([]domain.LeaderboardEntry{
		{Username: "valentina", Matches: 12, SurvivorMatches: 9},
	}, nil)

	w := f.perform(http.MethodGet, "/api/leaderboard", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "valentina")
}
