package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"riskToleranceBot/internal/questionnaire"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
}

// Store keeps each chat's questionnaire progress and chosen investment.
// Simulation results are never stored.
type Store struct {
	db DB
	// mu serialises the read-modify-write updates; telegram handles each
	// update on its own goroutine.
	mu sync.Mutex
}

// Session is one chat's in-progress state.
type Session struct {
	ChatID     int64
	Answers    questionnaire.AnswerSet
	Investment float64
	UpdatedAt  time.Time
}

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions(
		chat_id INTEGER PRIMARY KEY, answers TEXT NOT NULL DEFAULT '', investment REAL NOT NULL DEFAULT 0, updated_at INTEGER NOT NULL
	)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

// Session returns the chat's session, or a fresh one sized for n questions.
func (s *Store) Session(chatID int64, n int) (*Session, error) {
	var answers string
	var investment float64
	var updated int64
	err := s.db.QueryRow(`SELECT answers, investment, updated_at FROM sessions WHERE chat_id=?`, chatID).
		Scan(&answers, &investment, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return &Session{ChatID: chatID, Answers: questionnaire.NewAnswerSet(n)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}
	a, err := decodeAnswers(answers, n)
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", chatID, err)
	}
	return &Session{ChatID: chatID, Answers: a, Investment: investment, UpdatedAt: time.Unix(updated, 0)}, nil
}

func (s *Store) Save(sess *Session) error {
	sess.UpdatedAt = time.Now()
	_, err := s.db.Exec(`INSERT INTO sessions(chat_id,answers,investment,updated_at) VALUES(?,?,?,?)
		ON CONFLICT(chat_id) DO UPDATE SET answers=excluded.answers, investment=excluded.investment, updated_at=excluded.updated_at`,
		sess.ChatID, encodeAnswers(sess.Answers), sess.Investment, sess.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save session %d: %w", sess.ChatID, err)
	}
	return nil
}

// SetAnswer records choice for question idx (0-based) and returns the updated session.
func (s *Store) SetAnswer(chatID int64, n, idx int, choice questionnaire.Choice) (*Session, error) {
	if idx < 0 || idx >= n || choice < 1 || choice > 5 {
		return nil, fmt.Errorf("%w: question %d choice %d", questionnaire.ErrInvalidAnswer, idx+1, choice)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.Session(chatID, n)
	if err != nil {
		return nil, err
	}
	sess.Answers[idx] = choice
	return sess, s.Save(sess)
}

// ResetAnswers clears the questionnaire but keeps the investment amount.
func (s *Store) ResetAnswers(chatID int64, n int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.Session(chatID, n)
	if err != nil {
		return nil, err
	}
	sess.Answers = questionnaire.NewAnswerSet(n)
	return sess, s.Save(sess)
}

func (s *Store) SetInvestment(chatID int64, n int, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.Session(chatID, n)
	if err != nil {
		return err
	}
	sess.Investment = v
	return s.Save(sess)
}

func encodeAnswers(a questionnaire.AnswerSet) string {
	parts := make([]string, len(a))
	for i, c := range a {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ",")
}

// decodeAnswers resizes stored answers to n so a changed questionnaire never panics.
func decodeAnswers(s string, n int) (questionnaire.AnswerSet, error) {
	out := questionnaire.NewAnswerSet(n)
	if s == "" {
		return out, nil
	}
	for i, p := range strings.Split(s, ",") {
		if i >= n {
			break
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad stored answer %q: %w", p, err)
		}
		out[i] = questionnaire.Choice(v)
	}
	return out, nil
}
