package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/firsttechlabs/simpleinvoice-be/internal/customer/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (*customerdomain.Customer, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, customerdomain.ErrInvalidTenant
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, customerdomain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, customerdomain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	record := customerdomain.Customer{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*customerdomain.Customer, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, customerdomain.ErrInvalidTenant
	}
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, customerdomain.ErrInvalidID
	}

	var record customerdomain.Customer
	err = s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerdomain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Service) List(ctx context.Context, req customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return customerdomain.ListCustomerResponse{}, customerdomain.ErrInvalidTenant
	}

	query := s.db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("tenant_id = ?", tenantID)
	if name := strings.TrimSpace(req.Name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		query = query.Where("email LIKE ?", "%"+strings.ToLower(email)+"%")
	}
	if req.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *req.CreatedFrom)
	}
	if req.CreatedTo != nil {
		query = query.Where("created_at <= ?", *req.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return customerdomain.ListCustomerResponse{}, err
	}

	offset := pagination.DecodeToken(req.PageToken)
	size := pagination.NormalizeSize(req.PageSize)

	var records []customerdomain.Customer
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(size).
		Find(&records).Error; err != nil {
		return customerdomain.ListCustomerResponse{}, err
	}

	resp := customerdomain.ListCustomerResponse{Customers: records}
	resp.TotalCount = total
	if offset+len(records) < int(total) {
		resp.NextPageToken = pagination.EncodeToken(offset + len(records))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateCustomerRequest) (*customerdomain.Customer, error) {
	record, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, customerdomain.ErrInvalidName
		}
		record.Name = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, customerdomain.ErrInvalidEmail
		}
		record.Email = email
	}
	if req.Phone != nil {
		record.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		record.Address = strings.TrimSpace(*req.Address)
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var invoiceCount int64
	if err := s.db.WithContext(ctx).
		Table("invoices").
		Where("tenant_id = ? AND customer_id = ?", record.TenantID, record.ID).
		Count(&invoiceCount).Error; err != nil {
		return err
	}
	if invoiceCount > 0 {
		return customerdomain.ErrCustomerHasInvoice
	}

	return s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", record.TenantID, record.ID).
		Delete(&customerdomain.Customer{}).Error
}
