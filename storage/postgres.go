package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MaxKorjik/Mafia-Online/domain"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgr.pool.QueryRow(ctx, "SELECT id, password_hash FROM users WHERE username = $1", username)

	err := row.Scan(&user.Id, &user.PasswordHash)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserById(ctx context.Context, id int64) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgr.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)

	err := row.Scan(&user.Username, &user.PasswordHash)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (int64, error) {
	row := pgr.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id", username, passwordHash)

	var id int64
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return 0, domain.ErrDuplicateUsername
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}

		return 0, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return id, nil
}

func (pgr *PostgresRepo) CreateRoom(ctx context.Context, name string, owner int64, minPlayers, maxPlayers int, private bool) (domain.Room, error) {
	room := domain.Room{
		Name:       name,
		Owner:      owner,
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Private:    private,
		Active:     true,
	}

	row := pgr.pool.QueryRow(ctx,
		"INSERT INTO rooms(name, owner, min_players, max_players, is_private) VALUES($1, $2, $3, $4, $5) RETURNING id",
		name, owner, minPlayers, maxPlayers, private)

	if err := row.Scan(&room.Id); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Room{}, err
		}
		return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return room, nil
}

func (pgr *PostgresRepo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	room := domain.Room{Id: id}

	row := pgr.pool.QueryRow(ctx,
		"SELECT name, owner, min_players, max_players, is_private, is_active, live_players FROM rooms WHERE id = $1", id)

	err := row.Scan(&room.Name, &room.Owner, &room.MinPlayers, &room.MaxPlayers, &room.Private, &room.Active, &room.LivePlayers)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.Room{}, domain.ErrRoomNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.Room{}, err
		default:
			return domain.Room{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return room, nil
}

func (pgr *PostgresRepo) ListActiveRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := pgr.pool.Query(ctx,
		"SELECT id, name, owner, min_players, max_players, is_private, live_players FROM rooms WHERE is_active = TRUE AND is_private = FALSE ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		room := domain.Room{Active: true}
		if err := rows.Scan(&room.Id, &room.Name, &room.Owner, &room.MinPlayers, &room.MaxPlayers, &room.Private, &room.LivePlayers); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return rooms, nil
}

func (pgr *PostgresRepo) DeleteRoom(ctx context.Context, id int64) error {
	tag, err := pgr.pool.Exec(ctx, "DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (pgr *PostgresRepo) UpdateLivePlayers(ctx context.Context, id int64, count int) error {
	_, err := pgr.pool.Exec(ctx, "UPDATE rooms SET live_players = $2 WHERE id = $1", id, count)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (pgr *PostgresRepo) SetRoomInactive(ctx context.Context, id int64) error {
	_, err := pgr.pool.Exec(ctx, "UPDATE rooms SET is_active = FALSE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

// RecordMatchResult bumps a player's lifetime stats after a finished game.
func (pgr *PostgresRepo) RecordMatchResult(ctx context.Context, userId int64, survived, wasMafia bool) error {
	survivorInc := 0
	if survived {
		survivorInc = 1
	}
	mafiaInc := 0
	if wasMafia {
		mafiaInc = 1
	}

	_, err := pgr.pool.Exec(ctx,
		"UPDATE users SET matches = matches + 1, survivor_matches = survivor_matches + $2, mafia_matches = mafia_matches + $3 WHERE id = $1",
		userId, survivorInc, mafiaInc)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (pgr *PostgresRepo) TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := pgr.pool.Query(ctx,
		"SELECT id, username, matches, survivor_matches, mafia_matches FROM users ORDER BY matches DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	defer rows.Close()

	top := []domain.LeaderboardEntry{}
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.Id, &entry.Username, &entry.Matches, &entry.SurvivorMatches, &entry.MafiaMatches); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		top = append(top, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return top, nil
}
