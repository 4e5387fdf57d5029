package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/ajitseee/sweetshop/internal/dto"
	"github.com/ajitseee/sweetshop/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// SweetRepository defines the data access contract for inventory items.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type SweetRepository interface {
	Create(ctx context.Context, s *model.Sweet) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error)
	List(ctx context.Context) ([]model.Sweet, error)
	Search(ctx context.Context, filter dto.SweetFilter) ([]model.Sweet, error)
	// Update writes only the given columns. Returns ErrNotFound when no row matched.
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock subtracts qty in a single conditional UPDATE guarded by
	// quantity >= qty. It reports false when no row satisfied the guard.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	// IncrementStock adds qty atomically, guarded so the result stays within
	// model.MaxQuantity. It reports false when no row satisfied the guard.
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
}

type sweetRepo struct{ db *gorm.DB }

func NewSweetRepository(db *gorm.DB) SweetRepository { return &sweetRepo{db: db} }

func (r *sweetRepo) Create(ctx context.Context, s *model.Sweet) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sweetRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sweet, error) {
	var s model.Sweet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sweetRepo) List(ctx context.Context) ([]model.Sweet, error) {
	sweets := []model.Sweet{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&sweets).Error
	return sweets, err
}

func (r *sweetRepo) Search(ctx context.Context, filter dto.SweetFilter) ([]model.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&model.Sweet{})

	// LOWER + LIKE with an explicit escape behaves the same on Postgres and SQLite,
	// unlike ILIKE which SQLite lacks.
	if filter.Name != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(filter.Name))
	}
	if filter.Category != "" {
		q = q.Where(`LOWER(category) LIKE ? ESCAPE '\'`, containsPattern(filter.Category))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	sweets := []model.Sweet{}
	err := q.Order("name ASC").Find(&sweets).Error
	return sweets, err
}

func (r *sweetRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Sweet{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sweetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Sweet{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sweetRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Sweet{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *sweetRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Sweet{}).
		Where("id = ? AND quantity <= ?", id, model.MaxQuantity-qty).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive literal substring pattern.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
