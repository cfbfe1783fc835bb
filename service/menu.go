package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"smarthotel/apperror"
	"smarthotel/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MenuLookup resolves authoritative prices for the order composer.
type MenuLookup interface {
	Prices(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, error)
}

type MenuService struct {
	db *gorm.DB
}

func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{db: db}
}

type MenuInput struct {
	Name        string          `json:"name" form:"name" validate:"required"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price" form:"price" validate:"gt=0"`
	Category    string          `json:"category" form:"category"`
	ImageURL    string          `json:"image_url" form:"image_url"`
}

// Prices returns only the ids that exist and are not deleted.
func (s *MenuService) Prices(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, error) {
	prices := make(map[uint]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	var items []model.MenuItem
	if err := s.db.WithContext(ctx).Select("id", "price").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, apperror.Dependency("failed to load menu prices", err)
	}
	for _, item := range items {
		prices[item.ID] = item.Price
	}
	return prices, nil
}

// List returns the menu ordered by category then name. search matches names
// case-insensitively.
func (s *MenuService) List(ctx context.Context, search string) ([]model.MenuItem, error) {
	q := s.db.WithContext(ctx).Order("category, name")
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var items []model.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, apperror.Dependency("failed to fetch menu", err)
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id uint) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("menu item not found")
		}
		return nil, apperror.Dependency("failed to fetch menu item", err)
	}
	return &item, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuInput) (*model.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	item := model.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, apperror.Dependency("failed to create menu item", err)
	}
	return &item, nil
}

func (s *MenuService) Update(ctx context.Context, id uint, in MenuInput) (*model.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price.Round(2)
	item.Category = strings.TrimSpace(in.Category)
	if in.ImageURL != "" {
		item.ImageURL = in.ImageURL
	}
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, apperror.Dependency("failed to update menu item", err)
	}
	return item, nil
}

// Delete soft-deletes so past order lines keep their display name.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.MenuItem{}, id)
	if res.Error != nil {
		return apperror.Dependency("failed to delete menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("menu item not found")
	}
	return nil
}

func (s *MenuService) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, apperror.Dependency("failed to fetch categories", err)
	}
	return categories, nil
}

// ImportResult reports a bulk import. Skipped holds 1-based sheet row numbers.
type ImportResult struct {
	Created int   `json:"created"`
	Skipped []int `json:"skipped_rows"`
}

// ImportExcel reads Sheet1 (name, price, category, description, image_url)
// after a header row. Rows without a name or a positive price are skipped;
// all valid rows are inserted in one transaction.
func (s *MenuService) ImportExcel(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.Validation("failed to read Excel file")
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, apperror.Validation("Sheet1 not found in Excel file")
	}

	result := &ImportResult{Skipped: []int{}}
	var items []model.MenuItem
	for i, row := range rows {
		if i == 0 {
			continue
		}
		item, ok := menuItemFromRow(row)
		if !ok {
			result.Skipped = append(result.Skipped, i+1)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return result, nil
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	}); err != nil {
		return nil, apperror.Dependency("failed to import menu items", err)
	}
	result.Created = len(items)
	return result, nil
}

func menuItemFromRow(row []string) (model.MenuItem, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	name := cell(0)
	if name == "" {
		return model.MenuItem{}, false
	}
	price, err := decimal.NewFromString(cell(1))
	if err != nil || !price.IsPositive() {
		return model.MenuItem{}, false
	}
	return model.MenuItem{
		Name:        name,
		Price:       price.Round(2),
		Category:    cell(2),
		Description: cell(3),
		ImageURL:    cell(4),
	}, true
}

func menuNotFound(id uint) error {
	return apperror.Validation(fmt.Sprintf("menu item %d not found", id))
}
