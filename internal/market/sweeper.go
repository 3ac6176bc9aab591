// internal/market/sweeper.go
package market

import (
	"context"
	"log"
	"time"

	"stall-market-api-server/internal/models"
)

// Sweeper periodically releases expired unattended bookings. The dashboard
// fetch performs the same check lazily; both paths go through the
// conditional release so a double run is harmless.
type Sweeper struct {
	Booking  *BookingService
	Interval time.Duration

	// OnRelease, when set, is invoked for every stall the sweep released.
	// Used to push occupancy updates to connected dashboards.
	OnRelease func(stall models.Stall)
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := s.Booking.Sweep(ctx)
			if err != nil {
				log.Printf("Booking sweep failed: %v", err)
				continue
			}
			for _, stall := range released {
				log.Printf("Released expired booking: stall %q (vendor %s)", stall.Name, stall.AssignedVendor.VendorName)
				if s.OnRelease != nil {
					s.OnRelease(stall)
				}
			}
		}
	}
}
