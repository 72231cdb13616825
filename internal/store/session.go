package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/LdDl/gaze-go/gaze"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Sample is a calibration sample with capture protocol labels
type Sample struct {
	gaze.CalibrationSample
	Position  gaze.HeadPosition
	Distance  gaze.ViewingDistance
	Timestamp time.Time
}

// Session is a calibration run of a user on a device
type Session struct {
	ID        uuid.UUID
	Username  string
	Device    string
	CreatedAt time.Time
	// SampleCount is filled by List, where Samples are not loaded
	SampleCount int
	Samples     []Sample
}

// CalibrationSamples returns samples stripped of labels
func (s *Session) CalibrationSamples() []gaze.CalibrationSample {
	samples := make([]gaze.CalibrationSample, len(s.Samples))
	for i := range s.Samples {
		samples[i] = s.Samples[i].CalibrationSample
	}
	return samples
}

// SamplesAt returns samples captured with given head position
func (s *Session) SamplesAt(position gaze.HeadPosition) []gaze.CalibrationSample {
	samples := make([]gaze.CalibrationSample, 0, len(s.Samples))
	for i := range s.Samples {
		if s.Samples[i].Position == position {
			samples = append(samples, s.Samples[i].CalibrationSample)
		}
	}
	return samples
}

// SessionRepository provides operations on calibration sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts session with all of its samples in a single transaction.
// Nil ID is replaced with a random one and zero CreatedAt with current time
func (r *SessionRepository) Create(session *Session) (uuid.UUID, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.CreatedAt = session.CreatedAt.UTC()
	session.SampleCount = len(session.Samples)

	tx, err := r.db.Begin()
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, username, device, created_at) VALUES (?, ?, ?, ?)`,
		session.ID.String(), session.Username, session.Device, session.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "can't insert session")
	}

	stmt, err := tx.Prepare(
		`INSERT INTO calibration_samples
		 (session_id, sequence, head_position, viewing_distance, target_x, target_y, gaze_x, gaze_y, face_transform, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "can't prepare sample insert")
	}
	defer stmt.Close()

	for i := range session.Samples {
		sample := &session.Samples[i]
		if sample.Timestamp.IsZero() {
			sample.Timestamp = session.CreatedAt
		}
		sample.Timestamp = sample.Timestamp.UTC()
		transform, err := json.Marshal(sample.FacePose.Matrix())
		if err != nil {
			return uuid.Nil, errors.Wrapf(err, "can't encode face transform of sample %d", i)
		}
		_, err = stmt.Exec(
			session.ID.String(), i, string(sample.Position), string(sample.Distance),
			sample.Target.X, sample.Target.Y, sample.Gaze.X, sample.Gaze.Y,
			string(transform), sample.Timestamp,
		)
		if err != nil {
			return uuid.Nil, errors.Wrapf(err, "can't insert sample %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, errors.Wrap(err, "can't commit session")
	}
	return session.ID, nil
}

// Get retrieves a session with its samples.
func (r *SessionRepository) Get(id uuid.UUID) (*Session, error) {
	session := &Session{}
	var rawID string
	err := r.db.QueryRow(
		`SELECT id, username, device, created_at FROM sessions WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &session.Username, &session.Device, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.ID, err = uuid.Parse(rawID); err != nil {
		return nil, errors.Wrapf(err, "malformed session id '%s'", rawID)
	}

	samples, err := r.samples(session.ID)
	if err != nil {
		return nil, err
	}
	session.Samples = samples
	session.SampleCount = len(samples)
	return session, nil
}

func (r *SessionRepository) samples(id uuid.UUID) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT head_position, viewing_distance, target_x, target_y, gaze_x, gaze_y, face_transform, captured_at
		 FROM calibration_samples WHERE session_id = ? ORDER BY sequence`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var (
			sample    Sample
			position  string
			distance  string
			transform string
		)
		err := rows.Scan(&position, &distance,
			&sample.Target.X, &sample.Target.Y, &sample.Gaze.X, &sample.Gaze.Y,
			&transform, &sample.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		var matrix [16]float64
		if err := json.Unmarshal([]byte(transform), &matrix); err != nil {
			return nil, errors.Wrap(err, "malformed face transform")
		}
		sample.FacePose = gaze.PoseFromMatrix(matrix)
		sample.Position = gaze.HeadPosition(position)
		sample.Distance = gaze.ViewingDistance(distance)
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// List retrieves all sessions, newest first. Samples are not loaded
func (r *SessionRepository) List() ([]*Session, error) {
	return r.query(
		`SELECT s.id, s.username, s.device, s.created_at,
			(SELECT COUNT(*) FROM calibration_samples c WHERE c.session_id = s.id)
		 FROM sessions s ORDER BY s.created_at DESC, s.rowid DESC`,
	)
}

// Latest retrieves the newest session with its samples. Empty username or device matches any
func (r *SessionRepository) Latest(username, device string) (*Session, error) {
	var (
		conditions []string
		args       []any
	)
	if username != "" {
		conditions = append(conditions, "s.username = ?")
		args = append(args, username)
	}
	if device != "" {
		conditions = append(conditions, "s.device = ?")
		args = append(args, device)
	}
	query := `SELECT s.id, s.username, s.device, s.created_at, 0 FROM sessions s`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.created_at DESC, s.rowid DESC LIMIT 1"

	sessions, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	return r.Get(sessions[0].ID)
}

func (r *SessionRepository) query(query string, args ...any) ([]*Session, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		var rawID string
		if err := rows.Scan(&rawID, &session.Username, &session.Device, &session.CreatedAt, &session.SampleCount); err != nil {
			return nil, err
		}
		if session.ID, err = uuid.Parse(rawID); err != nil {
			return nil, errors.Wrapf(err, "malformed session id '%s'", rawID)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Delete removes a session and its samples.
func (r *SessionRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
