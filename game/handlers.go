package game

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MaxKorjik/Mafia-Online/domain"
)

type RoomRepo interface {
	CreateRoom(ctx context.Context, name string, owner int64, minPlayers, maxPlayers int, private bool) (domain.Room, error)
	GetRoom(ctx context.Context, id int64) (domain.Room, error)
	ListActiveRooms(ctx context.Context) ([]domain.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type UserGetter interface {
	GetUserById(ctx context.Context, id int64) (domain.User, error)
}

type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

type GameHandler struct {
	directory *Directory
	roomRepo  RoomRepo
	store     RoomStore
	users     UserGetter
	tokens    TokenVerifier
	guests    guestIds
}

func NewGameHandler(directory *Directory, roomRepo RoomRepo, store RoomStore, users UserGetter, tokens TokenVerifier) *GameHandler {
	return &GameHandler{
		directory: directory,
		roomRepo:  roomRepo,
		store:     store,
		users:     users,
		tokens:    tokens,
	}
}

type createRoomRequest struct {
	Name       string `json:"name"`
	MinPlayers int    `json:"min_players"`
	MaxPlayers int    `json:"max_players"`
	IsPrivate  bool   `json:"is_private"`
}

type roomResponse struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	Owner       int64  `json:"owner"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
	IsPrivate   bool   `json:"is_private"`
	LivePlayers int    `json:"live_players"`
}

func toRoomResponse(room domain.Room) roomResponse {
	return roomResponse{
		Id:          room.Id,
		Name:        room.Name,
		Owner:       room.Owner,
		MinPlayers:  room.MinPlayers,
		MaxPlayers:  room.MaxPlayers,
		IsPrivate:   room.Private,
		LivePlayers: room.LivePlayers,
	}
}

func (h *GameHandler) CreateRoomHandler(ctx *gin.Context) {
	ownerId := ctx.GetInt64("id")
	if ownerId == 0 {
		ctx.String(http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req createRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.String(http.StatusBadRequest, "invalid-request-format")
		return
	}

	// Four role slots plus the archetype catalog bound the roster size.
	if req.Name == "" || req.MinPlayers < 4 || req.MaxPlayers > len(archetypes) || req.MinPlayers > req.MaxPlayers {
		ctx.String(http.StatusBadRequest, "invalid-room-configs")
		return
	}

	room, err := h.roomRepo.CreateRoom(ctx.Request.Context(), req.Name, ownerId, req.MinPlayers, req.MaxPlayers, req.IsPrivate)
	if err != nil {
		slog.Error("room creation failed", "err", err)
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}

	h.directory.Add(NewSession(SessionConfig{
		Id:         room.Id,
		Name:       room.Name,
		Owner:      room.Owner,
		MinPlayers: room.MinPlayers,
		MaxPlayers: room.MaxPlayers,
	}, h.store))

	ctx.JSON(http.StatusCreated, toRoomResponse(room))
}

func (h *GameHandler) ListRoomsHandler(ctx *gin.Context) {
	rooms, err := h.roomRepo.ListActiveRooms(ctx.Request.Context())
	if err != nil {
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}

	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toRoomResponse(room))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *GameHandler) GetRoomHandler(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("roomid"), 10, 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "invalid-room-id")
		return
	}

	room, err := h.roomRepo.GetRoom(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.String(http.StatusNotFound, "room-not-found")
			return
		}
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}

	ctx.JSON(http.StatusOK, toRoomResponse(room))
}

func (h *GameHandler) DeleteRoomHandler(ctx *gin.Context) {
	requester := ctx.GetInt64("id")
	id, err := strconv.ParseInt(ctx.Param("roomid"), 10, 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "invalid-room-id")
		return
	}

	room, err := h.roomRepo.GetRoom(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.String(http.StatusNotFound, "room-not-found")
			return
		}
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}

	if room.Owner != requester {
		ctx.String(http.StatusForbidden, "not-owner")
		return
	}

	if err := h.roomRepo.DeleteRoom(ctx.Request.Context(), id); err != nil {
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}
	h.directory.Remove(id)

	ctx.Status(http.StatusOK)
}

func (h *GameHandler) LeaderboardHandler(ctx *gin.Context) {
	top, err := h.roomRepo.TopPlayers(ctx.Request.Context(), 10)
	if err != nil {
		ctx.String(http.StatusInternalServerError, "unknown-error")
		return
	}
	ctx.JSON(http.StatusOK, top)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RoomSocketHandler is the websocket entry into a session. A valid token
// cookie joins as the account's identity, anything else joins as a guest.
func (h *GameHandler) RoomSocketHandler(ctx *gin.Context) {
	roomId, err := strconv.ParseInt(ctx.Param("roomid"), 10, 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "invalid-room-id")
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "err", err)
		return
	}
	socket := NewWebsocketConnection(conn)

	session, err := h.directory.Lookup(roomId)
	if err != nil {
		socket.Write(makeError(ErrRoomNotFound).encode())
		socket.Close(ErrRoomNotFound.Error())
		return
	}

	id, name := h.identify(ctx)
	connId := uuid.NewString()
	log := slog.With("room", roomId, "player", name, "conn", connId)

	player := NewParticipant(id, name, socket)
	if err := session.Join(player); err != nil {
		socket.Write(makeError(err).encode())
		socket.Close(err.Error())
		return
	}
	log.Info("connection joined room")

	go player.WritePump()
	h.readLoop(session, player, log)
}

// identify resolves the connection's identity from the token cookie,
// falling back to a generated guest.
func (h *GameHandler) identify(ctx *gin.Context) (int64, string) {
	token, err := ctx.Cookie("token")
	if err == nil {
		if id, err := h.tokens.VerifyToken(token); err == nil {
			if user, err := h.users.GetUserById(ctx.Request.Context(), id); err == nil {
				return user.Id, user.Username
			}
		}
	}
	return h.guests.nextId(), generateGuestName()
}

func (h *GameHandler) readLoop(session *Session, player *Participant, log *slog.Logger) {
	defer func() {
		session.Leave(player.name)
		h.directory.ReleaseIfEmpty(session.Id())
		log.Info("connection closed")
	}()

	for {
		data, err := player.conn.Read()
		if err != nil {
			return
		}

		if !player.limiter.Allow() {
			continue
		}

		action, err := decodeClientAction(data)
		if err != nil {
			player.deliver(makeError(errUnknownAction).encode())
			continue
		}

		if err := h.dispatch(session, player, action); err != nil {
			// Per-request failures go back to the acting connection only.
			player.deliver(makeError(err).encode())
		}
	}
}

func (h *GameHandler) dispatch(session *Session, player *Participant, action ClientAction) error {
	switch action.Kind {
	case ActionChat:
		return session.Chat(player.id, action.Text)
	case ActionToggleReady:
		return session.ToggleReady(player.id)
	case ActionStartGame:
		return session.StartGame(player.id)
	case ActionBeginVote:
		return session.AdvanceToVote(player.id)
	case ActionVote:
		return session.SubmitVote(player.id, action.Target)
	case ActionNightAction:
		return session.SubmitNightAction(player.id, action.Target)
	default:
		return errUnknownAction
	}
}
