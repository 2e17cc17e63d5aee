// Package storage persists scraped payloads and processed records in
// MySQL, deduplicates cleaned text through Redis and moves payloads
// over RabbitMQ.
package storage

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/supersokol/workua-resume-toolkit/internal/config"
)

// MD5Hex is the hash used to deduplicate cleaned resume text.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Storage bundles the backends one command needs. Queue stays nil
// outside worker mode.
type Storage struct {
	MySQL *MySQL
	Redis *Redis
	Queue *RabbitMQ
}

// NewStorage connects MySQL and Redis, and RabbitMQ too when withQueue
// is set. On partial failure everything already opened is closed.
func NewStorage(cfg *config.Config, withQueue bool) (*Storage, error) {
	s := &Storage{}

	var err error
	if s.MySQL, err = NewMySQL(&cfg.MySQL); err != nil {
		return nil, err
	}
	if s.Redis, err = NewRedis(&cfg.Redis); err != nil {
		s.Close()
		return nil, err
	}
	if withQueue {
		if s.Queue, err = NewRabbitMQ(&cfg.RabbitMQ); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases every connected backend.
func (s *Storage) Close() {
	if s.Queue != nil {
		_ = s.Queue.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.MySQL != nil {
		_ = s.MySQL.Close()
	}
}
