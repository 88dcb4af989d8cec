package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
	"github.com/mosb/logistics-dashboard/internal/core/engine"
	"github.com/mosb/logistics-dashboard/internal/core/overlay"
	"github.com/mosb/logistics-dashboard/internal/core/ports"
	"github.com/mosb/logistics-dashboard/internal/core/status"
)

type dashboardService struct {
	engine *engine.Engine
	board  *status.Board
	agg    *overlay.Aggregator
	now    func() time.Time
	log    zerolog.Logger
}

// NewDashboardService returns a DashboardService over the given engine,
// status board and overlay memo.
func NewDashboardService(
	eng *engine.Engine,
	board *status.Board,
	agg *overlay.Aggregator,
	log zerolog.Logger,
) ports.DashboardService {
	return &dashboardService{
		engine: eng,
		board:  board,
		agg:    agg,
		now:    time.Now,
		log:    log,
	}
}

func (s *dashboardService) IngestEvents(events []domain.TrackedEvent) engine.IngestReport {
	report := s.engine.Ingest(events)
	if report.Malformed > 0 {
		s.log.Debug().Int("malformed", report.Malformed).Msg("malformed events dropped")
	}
	return report
}

// Events returns logged events in arrival order, filtered by q.
func (s *dashboardService) Events(q ports.EventQuery) []domain.AnnotatedEvent {
	all := s.engine.Snapshot().Events()

	out := make([]domain.AnnotatedEvent, 0, len(all))
	for _, e := range all {
		if e.TimestampMS < q.SinceMS {
			continue
		}
		if q.EventType != "" && q.EventType != overlay.FilterAll && string(e.Type) != q.EventType {
			continue
		}
		if q.ZoneID != "" && q.ZoneID != overlay.FilterAll && e.ZoneID != q.ZoneID {
			continue
		}
		if q.ShipmentNo != "" && e.ShipmentNo != q.ShipmentNo {
			continue
		}
		out = append(out, e)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out
}

func (s *dashboardService) Shipments() []domain.ShipmentProjection {
	return s.engine.Snapshot().Projections()
}

func (s *dashboardService) Shipment(shipmentNo string) (domain.ShipmentProjection, error) {
	p, ok := s.engine.Snapshot().Projection(shipmentNo)
	if !ok {
		return domain.ShipmentProjection{}, fmt.Errorf("shipment %s: %w", shipmentNo, domain.ErrShipmentNotFound)
	}
	return p, nil
}

func (s *dashboardService) UpsertShipments(rows []domain.ShipmentOverride) {
	s.engine.UpsertShipments(rows)
}

// HeatPoints aggregates the heatmap over the last q.Hours hours. The window
// start is truncated to the second so repeated renders share a memo entry.
func (s *dashboardService) HeatPoints(q ports.HeatmapQuery) []overlay.HeatPoint {
	snap := s.engine.Snapshot()

	window := snap.Window
	if q.Hours > 0 {
		window = time.Duration(q.Hours * float64(time.Hour))
	}
	since := s.now().Add(-window).Truncate(time.Second)

	f := overlay.HeatFilter{
		SinceMS:   since.UnixMilli(),
		EventType: q.EventType,
		ZoneID:    q.ZoneID,
	}
	return s.agg.HeatPoints(snap.Version, f, snap.Events)
}

func (s *dashboardService) EtaWedges(now time.Time) []overlay.EtaWedge {
	snap := s.engine.Snapshot()
	return s.agg.EtaWedges(snap.Version, now.UnixMilli(), snap.Projections)
}

func (s *dashboardService) LocationStatuses() []domain.LocationStatus {
	return s.board.Snapshot()
}

func (s *dashboardService) UpsertLocationStatus(st domain.LocationStatus) (domain.LocationStatus, error) {
	merged, err := s.board.Upsert(st)
	if err != nil {
		s.log.Debug().Err(err).Str("location_id", st.LocationID).Msg("status push rejected")
		return domain.LocationStatus{}, err
	}
	return merged, nil
}

func (s *dashboardService) ReplaceLocationStatuses(items []domain.LocationStatus) int {
	n := s.board.Replace(items)
	s.log.Info().Int("received", len(items)).Int("kept", n).Msg("location status replaced")
	return n
}

func (s *dashboardService) EventsCountByLocation(locationID string, since time.Time) int {
	return s.engine.Snapshot().EventsCountByLocation(locationID, since.UnixMilli())
}

func (s *dashboardService) Prune(now time.Time) int {
	return s.engine.PruneOldEvents(now)
}

// RunMaintenance prunes the log every interval until ctx is cancelled. Memo
// entries are dropped after a prune since they refer to older versions.
func (s *dashboardService) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := s.Prune(t); n > 0 {
				s.agg.Purge()
				s.log.Info().Int("removed", n).Msg("event log pruned")
			}
		}
	}
}
