package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/karmacoin/node/foundation/blockchain/database"
)

// backupFile is the JSON shape written by Backup.
type backupFile struct {
	CreatedAt time.Time                 `json:"created_at"`
	Stats     database.BlockchainStats  `json:"stats"`
	Users     []database.User           `json:"users"`
}

// Backup serialises all user records and the aggregate statistics to a
// timestamped JSON file under the configured backup directory. Returns the
// file path, or the empty string when no directory is configured.
func (s *State) Backup() (string, error) {
	if s.backupDir == "" {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.db.ScanUsers()
	if err != nil {
		return "", fmt.Errorf("scanning users: %w", err)
	}

	stats, err := s.db.GetStats()
	if err != nil {
		return "", fmt.Errorf("loading stats: %w", err)
	}

	data, err := json.MarshalIndent(backupFile{
		CreatedAt: time.Now().UTC(),
		Stats:     stats,
		Users:     users,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding backup: %w", err)
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	path := filepath.Join(s.backupDir, fmt.Sprintf("chain-%s.json", time.Now().UTC().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	s.evHandler("state: backup: wrote %s: users[%d] height[%d]", path, len(users), stats.TipHeight)

	return path, nil
}
