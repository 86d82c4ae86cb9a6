// Package importer loads respondent rosters from spreadsheet files into the
// store. Rows are mapped by header name, so column order does not matter.
package importer

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

// Result summarizes one import run.
type Result struct {
	Rows     int
	Imported int
	Skipped  int
}

// Importer writes parsed respondents into the store.
type Importer struct {
	store store.Store
	now   func() time.Time
}

// New creates an Importer.
func New(st store.Store) *Importer {
	return &Importer{store: st, now: time.Now}
}

// columnAliases maps normalized header names to respondent fields. Panel
// exports disagree on naming, so common variants are accepted.
var columnAliases = map[string]string{
	"hashid":            "hashId",
	"hash_id":           "hashId",
	"id":                "hashId",
	"panelistid":        "hashId",
	"firstname":         "firstName",
	"first_name":        "firstName",
	"lastname":          "lastName",
	"last_name":         "lastName",
	"email":             "email",
	"emailaddress":      "email",
	"company":           "company",
	"employer":          "company",
	"location":          "location",
	"city":              "location",
	"employmentstatus":  "employmentStatus",
	"employment_status": "employmentStatus",
	"jobtitle":          "jobTitle",
	"job_title":         "jobTitle",
	"title":             "jobTitle",
	"jobfunction":       "jobFunction",
	"job_function":      "jobFunction",
	"companysize":       "companySize",
	"company_size":      "companySize",
	"industry":          "industry",
}

// mapHeader resolves each column index to a canonical field name. Unknown
// columns map to "".
func mapHeader(header []string) []string {
	fields := make([]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "")
		fields[i] = columnAliases[key]
	}
	return fields
}

// rowToRespondent builds a respondent from one data row. Returns false when
// the row has no hash ID or no email.
func rowToRespondent(fields []string, row []string, created time.Time) (model.Respondent, bool) {
	r := model.Respondent{CreatedAt: created}
	for i, cell := range row {
		if i >= len(fields) {
			break
		}
		val := strings.TrimSpace(cell)
		switch fields[i] {
		case "hashId":
			r.HashID = val
		case "firstName":
			r.FirstName = val
		case "lastName":
			r.LastName = val
		case "email":
			r.Email = val
		case "company":
			r.Company = val
		case "location":
			r.Location = val
		case "employmentStatus":
			r.EmploymentStatus = val
		case "jobTitle":
			r.JobTitle = val
		case "jobFunction":
			r.JobFunction = val
		case "companySize":
			r.CompanySize = val
		case "industry":
			r.Industry = val
		}
	}
	return r, r.HashID != "" && r.Email != ""
}

// importRows maps and persists parsed rows. The first row is the header.
func (im *Importer) importRows(ctx context.Context, rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, eris.New("importer: file has no rows")
	}
	fields := mapHeader(rows[0])

	created := im.now().UTC().Truncate(time.Second)
	res := &Result{Rows: len(rows) - 1}
	respondents := make([]model.Respondent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r, ok := rowToRespondent(fields, row, created)
		if !ok {
			res.Skipped++
			continue
		}
		respondents = append(respondents, r)
	}

	if len(respondents) > 0 {
		n, err := im.store.UpsertRespondents(ctx, respondents)
		if err != nil {
			return nil, eris.Wrap(err, "importer: upsert respondents")
		}
		res.Imported = n
	}

	zap.L().Info("respondent import complete",
		zap.Int("rows", res.Rows),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
