// internal/market/license.go
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LicenseService drives the business permit lifecycle:
// not_issued -> requested -> completed. Completed is terminal and there is
// no regression path.
type LicenseService struct {
	vendors VendorRepository
	now     func() time.Time
}

// NewLicenseService creates a license lifecycle service.
func NewLicenseService(vendors VendorRepository) *LicenseService {
	return &LicenseService{vendors: vendors, now: time.Now}
}

// Apply submits a vendor's license application. Aadhaar ID, PAN number,
// business name and both photos are mandatory; re-application while a
// request is pending or after issuance is rejected.
func (s *LicenseService) Apply(ctx context.Context, vendorID primitive.ObjectID, docs models.LicenseDocuments) (*models.License, error) {
	var missing []string
	if strings.TrimSpace(docs.AadhaarID) == "" {
		missing = append(missing, "aadhaarID")
	}
	if strings.TrimSpace(docs.PANNumber) == "" {
		missing = append(missing, "panNumber")
	}
	if strings.TrimSpace(docs.BusinessName) == "" {
		missing = append(missing, "businessName")
	}
	if docs.ShopPhotoURL == "" {
		missing = append(missing, "shopPhoto")
	}
	if docs.VendorPhotoURL == "" {
		missing = append(missing, "vendorPhoto")
	}
	if len(missing) > 0 {
		return nil, validationf("missing required documents: %s", strings.Join(missing, ", "))
	}

	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	switch vendor.License.Status {
	case models.LicenseRequested:
		return nil, conflictf("a license application is already pending")
	case models.LicenseCompleted:
		return nil, conflictf("license has already been issued")
	}

	appliedAt := s.now()
	lic := models.License{
		Status:    models.LicenseRequested,
		Documents: &docs,
		AppliedAt: &appliedAt,
	}
	if err := s.vendors.SetLicense(ctx, vendorID, lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

// Approve issues the license for a pending application. The license number
// is derived from the shop ID and the issuance time and checked for
// uniqueness before commit.
func (s *LicenseService) Approve(ctx context.Context, vendorID primitive.ObjectID) (*models.License, error) {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if vendor.License.Status != models.LicenseRequested {
		return nil, conflictf("license status is %q, approval requires %q", vendor.License.Status, models.LicenseRequested)
	}

	issuedAt := s.now()
	number, err := s.uniqueLicenseNumber(ctx, vendor.ShopID, issuedAt)
	if err != nil {
		return nil, err
	}

	lic := vendor.License
	lic.Status = models.LicenseCompleted
	lic.ApprovedAt = &issuedAt
	lic.LicenseNumber = number
	if err := s.vendors.SetLicense(ctx, vendorID, lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

// PendingApplications lists vendors whose license is awaiting approval.
func (s *LicenseService) PendingApplications(ctx context.Context) ([]models.Vendor, error) {
	return s.vendors.FindLicenseRequested(ctx)
}

// uniqueLicenseNumber builds "LIC-{shopID}-{unix}" and bumps the issuance
// second until no other vendor holds the number. Collisions are only
// possible when two approvals for re-registered shop IDs land in the same
// second, but the number must be globally unique so we verify anyway.
func (s *LicenseService) uniqueLicenseNumber(ctx context.Context, shopID string, issuedAt time.Time) (string, error) {
	for i := 0; i < 10; i++ {
		number := fmt.Sprintf("LIC-%s-%d", shopID, issuedAt.Add(time.Duration(i)*time.Second).Unix())
		count, err := s.vendors.CountByLicenseNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique license number for shop %s", shopID)
}
