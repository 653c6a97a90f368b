package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"salesdash/internal/engine"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// parseQuery reads start, end and the repeated region/state/city params.
// Comma separated values are accepted too: ?region=East,West.
func parseQuery(c echo.Context) (engine.Query, error) {
	var q engine.Query
	var err error

	if q.Start, err = parseDateParam(c, "start"); err != nil {
		return q, err
	}
	if q.End, err = parseDateParam(c, "end"); err != nil {
		return q, err
	}

	params := c.QueryParams()
	q.Selection = engine.Selection{
		Regions: splitValues(params["region"]),
		States:  splitValues(params["state"]),
		Cities:  splitValues(params["city"]),
	}
	return q, nil
}

func parseDateParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" date, expected YYYY-MM-DD").SetInternal(err)
	}
	return t, nil
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
