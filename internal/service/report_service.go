package service

import (
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/report"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
)

// Action is a catalog-entry shortcut offered on the overview
type Action struct {
	Title  string `json:"title"`
	Method string `json:"method"`
	Href   string `json:"href"`
}

var CreationActions = []Action{
	{Title: "New manufacturer", Method: "POST", Href: "/api/v1/companies"},
	{Title: "New shop", Method: "POST", Href: "/api/v1/shops"},
	{Title: "Add new product", Method: "POST", Href: "/api/v1/products"},
	{Title: "Add stock unit", Method: "POST", Href: "/api/v1/stock"},
}

// Overview is the main page: a page of the catalog next to the owner's report.
// Report is nil and HasStock false when the owner tracks nothing yet.
type Overview struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasStock bool            `json:"has_stock"`
	Report   *report.Report  `json:"report"`
	Actions  []Action        `json:"actions"`
}

type ReportService interface {
	BuildReport(owner uuid.UUID) (*report.Report, error)
	Overview(owner *uuid.UUID, filter string, page, pageSize int) (*Overview, error)
}

type reportService struct {
	entryRepo   repository.StockEntryRepository
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
}

func NewReportService(entryRepo repository.StockEntryRepository, productRepo repository.ProductRepository, companyRepo repository.CompanyRepository) ReportService {
	return &reportService{
		entryRepo:   entryRepo,
		productRepo: productRepo,
		companyRepo: companyRepo,
	}
}

// BuildReport recomputes owner's summaries from the current ledger.
// It returns nil when owner has no entries.
func (s *reportService) BuildReport(owner uuid.UUID) (*report.Report, error) {
	entries, err := s.entryRepo.FindWeightsByOwner(owner)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	productIDs := make([]uuid.UUID, 0)
	companyIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, e := range entries {
		if !seen[e.ProductID] {
			seen[e.ProductID] = true
			productIDs = append(productIDs, e.ProductID)
		}
		if e.CompanyID != nil && !seen[*e.CompanyID] {
			seen[*e.CompanyID] = true
			companyIDs = append(companyIDs, *e.CompanyID)
		}
	}

	products, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	companies, err := s.companyRepo.FindByIDs(companyIDs)
	if err != nil {
		return nil, err
	}

	productMap := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}
	companyMap := make(map[uuid.UUID]model.Company, len(companies))
	for _, c := range companies {
		companyMap[c.ID] = c
	}

	return report.Build(entries, productMap, companyMap), nil
}

// Overview lists the catalog (global, filtered by title or manufacturer name)
// and, for a known owner, that owner's report.
func (s *reportService) Overview(owner *uuid.UUID, filter string, page, pageSize int) (*Overview, error) {
	page, pageSize = NormalizePage(page, pageSize)
	products, total, err := s.productRepo.Search(filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Actions:  CreationActions,
	}
	if owner == nil {
		return ov, nil
	}

	rep, err := s.BuildReport(*owner)
	if err != nil {
		return nil, err
	}
	ov.Report = rep
	ov.HasStock = rep != nil
	return ov, nil
}
