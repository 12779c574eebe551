package complaint

import (
	"net/url"
	"strings"
	"time"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/google/go-querystring/query"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// Criteria is a partly populated filter. Zero fields are unset.
type Criteria struct {
	CreatedBefore *time.Time    `json:"created_before,omitempty" url:"-"`
	Category      string        `json:"category,omitempty" url:"category,omitempty"`
	SubCategory   string        `json:"sub_category,omitempty" url:"sub_category,omitempty"`
	Status        *model.Status `json:"status,omitempty" url:"status,omitempty"`
	HasImage      bool          `json:"has_image,omitempty" url:"has_image,omitempty"`
}

func (c Criteria) IsEmpty() bool {
	return c.CreatedBefore == nil &&
		c.Category == "" &&
		c.SubCategory == "" &&
		c.Status == nil &&
		!c.HasImage
}

// Encode renders the criteria as a query string that Query can read back.
func (c Criteria) Encode() (string, error) {
	v, err := query.Values(c)
	if err != nil {
		return "", errors.Wrap(err, "encode criteria")
	}
	if c.CreatedBefore != nil {
		v.Set("created_before", formatDate(*c.CreatedBefore))
	}
	return v.Encode(), nil
}

// formatDate keeps the short date form only when no time of day is lost.
func formatDate(t time.Time) string {
	y, m, d := t.Date()
	if t.Location() == time.UTC && t.Equal(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339Nano)
}

// Query is the wire form of criteria as sent by clients. Category and
// subcategory may arrive as ids, which callers resolve to titles before
// building Criteria.
type Query struct {
	CreatedBefore string `json:"created_before" schema:"created_before"`
	Category      string `json:"category" schema:"category"`
	CategoryID    int64  `json:"category_id" schema:"category_id"`
	SubCategory   string `json:"sub_category" schema:"sub_category"`
	SubCategoryID int64  `json:"sub_category_id" schema:"sub_category_id"`
	Status        string `json:"status" schema:"status"`
	HasImage      bool   `json:"has_image" schema:"has_image"`
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

var criteriaKeys = []string{
	"created_before", "category", "category_id",
	"sub_category", "sub_category_id", "status", "has_image",
}

// HasCriteria reports whether any filter parameter is present.
func HasCriteria(values url.Values) bool {
	for _, k := range criteriaKeys {
		if _, ok := values[k]; ok {
			return true
		}
	}
	return false
}

func DecodeQuery(values url.Values) (Query, error) {
	var q Query
	if err := decoder.Decode(&q, values); err != nil {
		return Query{}, errors.Wrap(err, "decode filter query")
	}
	return q, nil
}

// Criteria converts the query, leaving id based fields to the caller.
func (q Query) Criteria() (Criteria, error) {
	c := Criteria{
		Category:    strings.TrimSpace(q.Category),
		SubCategory: strings.TrimSpace(q.SubCategory),
		HasImage:    q.HasImage,
	}

	if q.CreatedBefore != "" {
		t, err := parseDate(q.CreatedBefore)
		if err != nil {
			return Criteria{}, err
		}
		c.CreatedBefore = &t
	}

	if q.Status != "" {
		s, err := model.ParseStatus(q.Status)
		if err != nil {
			return Criteria{}, err
		}
		c.Status = &s
	}

	return c, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "created_before %q is not a date", v)
	}
	return t, nil
}
