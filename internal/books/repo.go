package books

import (
	"context"
	"strings"

	"github.com/angelmondragon/bookstore/pkg/db/models"
	"github.com/angelmondragon/bookstore/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes catalogue persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// List returns up to limit books ordered by title then id, starting after cursor.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Book, error) {
	q := r.db.WithContext(ctx).Order("title ASC").Order("id ASC").Limit(limit)
	if cursor != nil {
		q = q.Where("title > ? OR (title = ? AND id > ?)", cursor.Key, cursor.Key, cursor.ID)
	}
	var rows []models.Book
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// All returns the whole catalogue ordered by title.
func (r *Repository) All(ctx context.Context) ([]models.Book, error) {
	var rows []models.Book
	if err := r.db.WithContext(ctx).Order("title ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches term case-insensitively against title or author.
func (r *Repository) Search(ctx context.Context, term string) ([]models.Book, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	var rows []models.Book
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(author) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("title ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// DecrementStock removes qty from a book's stock. It matches no row when stock is short.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
