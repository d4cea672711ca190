package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

/*
	The library persists what a designer decided once so every later run can
	reuse it:

	component-associations: (prefix, value, footprint) -> fabricator part number
	footprint-rotations:    footprint name -> rotation offset in degrees
*/

var (
	COMPONENTS_ASC_BKT = []byte("component-associations")
	ROTATIONS_BKT      = []byte("footprint-rotations")
)

// Association maps a group of identical parts to a fabricator part number.
type Association struct {
	Prefix     string
	Value      string
	Footprint  string
	PartNumber string
}

func (a Association) Row() []string {
	return []string{a.Prefix, a.Value, a.Footprint, a.PartNumber}
}

type Library struct {
	root   string
	db     *bolt.DB
	logger *zap.Logger
}

// DefaultLibraryPath is jbom.db under the user configuration directory.
func DefaultLibraryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "jbom", "jbom.db"), nil
}

/*
	Create or open library at path
*/
func OpenLibrary(path string, logger *zap.Logger) (*Library, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{COMPONENTS_ASC_BKT, ROTATIONS_BKT} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("opened library", zap.String("path", path))
	return &Library{root: filepath.Dir(path), db: db, logger: logger}, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) Associate(prefix, value, footprint, partNumber string) error {
	association := Association{
		Prefix:     strings.ToUpper(prefix),
		Value:      value,
		Footprint:  FootprintName(footprint),
		PartNumber: strings.TrimSpace(partNumber),
	}

	bytes, err := Marshal(association)
	if err != nil {
		return err
	}

	l.logger.Debug("associating part",
		zap.String("prefix", association.Prefix),
		zap.String("value", value),
		zap.String("footprint", association.Footprint),
		zap.String("part", association.PartNumber))

	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(COMPONENTS_ASC_BKT).Put(bcKey(prefix, value, footprint), bytes)
	})
}

/*
	Find the associated part number, given a designator prefix, value and
	footprint
*/
func (l *Library) FindMatching(prefix, value, footprint string) (string, bool) {
	association := Association{}
	found := false

	l.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(COMPONENTS_ASC_BKT).Get(bcKey(prefix, value, footprint))
		if data == nil {
			return nil
		}

		if err := Unmarshal(data, &association); err != nil {
			l.logger.Warn("corrupt association", zap.Error(err))
			return nil
		}

		found = true
		return nil
	})

	return association.PartNumber, found
}

func (l *Library) ExportAssociations() ([]Association, error) {
	associations := []Association{}
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(COMPONENTS_ASC_BKT).ForEach(func(k, v []byte) error {
			association := Association{}
			if err := Unmarshal(v, &association); err != nil {
				return fmt.Errorf("association %q: %w", splitKey(k), err)
			}

			associations = append(associations, association)
			return nil
		})
	})

	return associations, err
}

// PartNumbers returns the distinct associated part numbers, sorted.
func (l *Library) PartNumbers() []string {
	associations, err := l.ExportAssociations()
	if err != nil {
		return []string{}
	}

	seen := map[string]struct{}{}
	parts := []string{}
	for _, association := range associations {
		if _, ok := seen[association.PartNumber]; ok {
			continue
		}
		seen[association.PartNumber] = struct{}{}
		parts = append(parts, association.PartNumber)
	}
	sort.Strings(parts)

	return parts
}

/*
	Erase all associations and import rows of (prefix, value, footprint,
	part number). Short rows are skipped.
*/
func (l *Library) ImportAssociations(rows <-chan []string) error {
	n := 0
	err := l.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(COMPONENTS_ASC_BKT); err != nil {
			return err
		}

		bucket, err := tx.CreateBucket(COMPONENTS_ASC_BKT)
		if err != nil {
			return err
		}

		for row := range rows {
			if len(row) < 4 || row[3] == "" {
				continue
			}

			association := Association{
				Prefix:     strings.ToUpper(row[0]),
				Value:      row[1],
				Footprint:  FootprintName(row[2]),
				PartNumber: strings.TrimSpace(row[3]),
			}

			bytes, err := Marshal(association)
			if err != nil {
				return err
			}

			if err := bucket.Put(bcKey(row[0], row[1], row[2]), bytes); err != nil {
				return err
			}
			n++
		}

		return nil
	})

	l.logger.Info("imported associations", zap.Int("count", n))
	return err
}

func (l *Library) SetRotation(footprint string, rotation float64) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ROTATIONS_BKT).Put(
			[]byte(FootprintName(footprint)),
			[]byte(strconv.FormatFloat(rotation, 'f', -1, 64)),
		)
	})
}

// Rotations returns every footprint rotation offset.
func (l *Library) Rotations() (map[string]float64, error) {
	rotations := make(map[string]float64)
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ROTATIONS_BKT).ForEach(func(k, v []byte) error {
			rotation, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return fmt.Errorf("rotation for %s: %w", k, err)
			}

			rotations[string(k)] = rotation
			return nil
		})
	})

	return rotations, err
}
