package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/goshop/internal/datamodels/product"
)

// MaxImages per product
const MaxImages = 4

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// ImageStore persists uploaded pictures by file name
type ImageStore interface {
	Save(name string, r io.Reader) error
	Remove(name string) error
}

// ImageUpload one uploaded file
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// AddProductInput admin add-product form
type AddProductInput struct {
	Name     string
	Price    decimal.Decimal
	Category string
	Quantity int64
	Status   string
	Images   []ImageUpload
}

// UpdateProductInput partial update; nil or empty fields keep the stored value
type UpdateProductInput struct {
	ID       int64
	Price    *decimal.Decimal
	Category string
	Quantity *int64
	Status   string
	// Images, when non-empty, replace every stored picture.
	Images []ImageUpload
}

type ProductService struct {
	repo   product.Repository
	images ImageStore
}

func NewProductService(repo product.Repository, images ImageStore) *ProductService {
	return &ProductService{repo: repo, images: images}
}

func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Add registers a new product. The name is capitalized and must be unused.
func (s *ProductService) Add(ctx context.Context, in AddProductInput) (*product.Product, error) {
	name := Capitalize(strings.TrimSpace(in.Name))
	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return nil, ErrDuplicateProduct
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	if len(in.Images) == 0 {
		return nil, ErrNoImages
	}
	if err := checkImages(in.Images); err != nil {
		return nil, err
	}

	names, err := s.storeImages(in.Images)
	if err != nil {
		return nil, err
	}
	p := &product.Product{
		Name:     name,
		Price:    in.Price,
		Category: in.Category,
		Quantity: in.Quantity,
		Status:   in.Status,
		Images:   imageRows(names),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.discardImages(names)
		return nil, err
	}
	return p, nil
}

// Update applies the non-empty fields of in.
func (s *ProductService) Update(ctx context.Context, in UpdateProductInput) (*product.Product, error) {
	p, err := s.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := checkImages(in.Images); err != nil {
		return nil, err
	}

	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != "" {
		p.Category = in.Category
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	var (
		names []string
		rows  []product.Image
	)
	if len(in.Images) > 0 {
		// stored before the transaction, discarded if it fails
		if names, err = s.storeImages(in.Images); err != nil {
			return nil, err
		}
		rows = imageRows(names)
	}
	if err := s.repo.Update(ctx, p, rows); err != nil {
		s.discardImages(names)
		return nil, err
	}
	if len(rows) > 0 {
		p.Images = rows
	}
	return p, nil
}

// Delete removes the product and its image rows. Picture files are kept.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	return err
}

var exportHeader = []string{"ID", "Name", "Category", "Price", "Quantity", "Status", "Pictures"}

// ExportXLSX writes the catalog as a single-sheet workbook.
func (s *ProductService) ExportXLSX(ctx context.Context, w io.Writer) error {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	row := sheet.AddRow()
	for _, h := range exportHeader {
		row.AddCell().SetValue(h)
	}
	for _, p := range list {
		row = sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Quantity)
		row.AddCell().SetValue(p.Status)
		row.AddCell().SetValue(len(p.Images))
	}
	return file.Write(w)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func checkImages(images []ImageUpload) error {
	if len(images) > MaxImages {
		return ErrTooManyImages
	}
	for _, img := range images {
		if !allowedImageExt[strings.ToLower(filepath.Ext(img.Filename))] {
			return fmt.Errorf("%w: %s", ErrUnsupportedImage, img.Filename)
		}
	}
	return nil
}

func (s *ProductService) storeImages(images []ImageUpload) ([]string, error) {
	names := make([]string, 0, len(images))
	for _, img := range images {
		name, err := imageName(img.Filename)
		if err != nil {
			s.discardImages(names)
			return nil, err
		}
		if err := s.images.Save(name, img.Content); err != nil {
			s.discardImages(names)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *ProductService) discardImages(names []string) {
	for _, n := range names {
		if err := s.images.Remove(n); err != nil {
			zap.L().Warn("remove image failed", zap.String("file", n), zap.Error(err))
		}
	}
}

// imageName random 20 hex chars plus the original extension
func imageName(original string) (string, error) {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b) + filepath.Ext(original), nil
}

func imageRows(names []string) []product.Image {
	rows := make([]product.Image, 0, len(names))
	for _, n := range names {
		rows = append(rows, product.Image{Filename: n})
	}
	return rows
}
