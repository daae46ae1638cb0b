package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sifan077/CharacterVault/internal/app/apperr"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"gorm.io/gorm"
)

const defaultListLimit = 20

var (
	// ErrCharacterNotFound signals that no record has the requested id.
	ErrCharacterNotFound = errors.New("character not found")
)

// CharacterRepository defines the data access contract for stored characters.
type CharacterRepository interface {
	Create(ctx context.Context, rec *model.CharacterRecord) error
	List(ctx context.Context, limit, offset int) ([]model.CharacterRecord, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.CharacterRecord, error)
	IDs(ctx context.Context) ([]int64, error)
}

type characterRepository struct {
	db      *gorm.DB
	baseURL string
	now     func() time.Time
}

// NewCharacterRepository returns a GORM-backed CharacterRepository. Record
// urls are derived as <baseURL>/collection/<id>.
func NewCharacterRepository(db *gorm.DB, baseURL string) CharacterRepository {
	return &characterRepository{
		db:      db,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// RecordURL builds the canonical address of a stored record.
func RecordURL(baseURL string, id int64) string {
	return fmt.Sprintf("%s/collection/%d", strings.TrimRight(baseURL, "/"), id)
}

func (r *characterRepository) Create(ctx context.Context, rec *model.CharacterRecord) error {
	rec.ID = 0
	rec.URL = ""
	rec.Created = r.now().UTC().Truncate(time.Millisecond)
	if rec.EpisodeURLs == nil {
		rec.EpisodeURLs = []string{}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		url := RecordURL(r.baseURL, int64(rec.ID))
		if err := tx.Model(rec).Update("url", url).Error; err != nil {
			return err
		}
		rec.URL = url
		return nil
	})
	if err != nil {
		rec.ID, rec.URL = 0, ""
		return apperr.NewStoreError("create", err)
	}
	return nil
}

func (r *characterRepository) List(ctx context.Context, limit, offset int) ([]model.CharacterRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	result := make([]model.CharacterRecord, 0, limit)
	if err := r.db.WithContext(ctx).
		Order("created DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error; err != nil {
		return nil, apperr.NewStoreError("list", err)
	}
	return result, nil
}

func (r *characterRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CharacterRecord{}).Count(&total).Error; err != nil {
		return 0, apperr.NewStoreError("count", err)
	}
	return total, nil
}

func (r *characterRepository) GetByID(ctx context.Context, id int64) (*model.CharacterRecord, error) {
	if id <= 0 {
		return nil, ErrCharacterNotFound
	}
	var rec model.CharacterRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, apperr.NewStoreError("get", err)
	}
	return &rec, nil
}

func (r *characterRepository) IDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.CharacterRecord{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, apperr.NewStoreError("ids", err)
	}
	return ids, nil
}
