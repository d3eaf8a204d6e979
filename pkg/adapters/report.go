package adapters

import (
	"github.com/de-tools/industry-reports/pkg/models/api"
	"github.com/de-tools/industry-reports/pkg/models/domain"
)

func MapDomainReportToApiReport(r domain.Report) api.Report {
	return api.Report{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Language:    r.Language,
		Type:        r.Type,
		File:        r.File,
	}
}

func MapApiReportToDomainReport(r api.Report) domain.Report {
	return domain.Report{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Language:    r.Language,
		Type:        r.Type,
		File:        r.File,
	}
}

func MapDomainSnapshotToApiSnapshot(s domain.Snapshot) api.Snapshot {
	reports := make([]api.Report, 0, len(s.Reports))
	for _, r := range s.Reports {
		reports = append(reports, MapDomainReportToApiReport(r))
	}
	return api.Snapshot{
		CurrentPeriod: s.CurrentPeriod,
		LastUpdated:   s.LastUpdated,
		Reports:       reports,
	}
}

func MapApiSnapshotToDomainSnapshot(s api.Snapshot) domain.Snapshot {
	reports := make([]domain.Report, 0, len(s.Reports))
	for _, r := range s.Reports {
		reports = append(reports, MapApiReportToDomainReport(r))
	}
	return domain.Snapshot{
		CurrentPeriod: s.CurrentPeriod,
		LastUpdated:   s.LastUpdated,
		Reports:       reports,
	}
}
