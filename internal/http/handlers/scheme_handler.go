package handlers

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
)

// SchemeInput is the body of POST /schemes. Source and state default to
// "Central" and "Pan India".
type SchemeInput struct {
	Name               string              `json:"name" example:"Ujjwala Yojana"`
	Category           string              `json:"category" example:"Women & Child Welfare"`
	Description        string              `json:"description"`
	Beneficiaries      string              `json:"beneficiaries"`
	Eligibility        string              `json:"eligibility"`
	Benefits           string              `json:"benefits"`
	Documents          string              `json:"documents"`
	ApplicationProcess string              `json:"applicationProcess"`
	OfficialLink       string              `json:"officialLink,omitempty"`
	Source             string              `json:"source,omitempty" example:"Central"`
	State              string              `json:"state,omitempty" example:"Pan India"`
	Keywords           []string            `json:"keywords,omitempty"`
	Translations       domain.Translations `json:"translations,omitempty"`
}

func (in SchemeInput) toDomain() *domain.Scheme {
	kw := make([]string, 0, len(in.Keywords))
	for _, k := range in.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	tr := in.Translations
	if tr == nil {
		tr = domain.Translations{}
	}
	return &domain.Scheme{
		Name:               in.Name,
		Category:           in.Category,
		Description:        in.Description,
		Beneficiaries:      in.Beneficiaries,
		Eligibility:        in.Eligibility,
		Benefits:           in.Benefits,
		Documents:          in.Documents,
		ApplicationProcess: in.ApplicationProcess,
		OfficialLink:       in.OfficialLink,
		Source:             in.Source,
		State:              in.State,
		Keywords:           datatypes.JSONSlice[string](kw),
		Translations:       datatypes.NewJSONType(tr),
	}
}

func listQuery(c *gin.Context) services.ListQuery {
	return services.ListQuery{
		Category: strings.TrimSpace(c.Query("category")),
		State:    strings.TrimSpace(c.Query("state")),
		Source:   strings.TrimSpace(c.Query("source")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
}

// listETag changes whenever a scheme is added or the filter differs. The
// catalogue is append-only, so count and highest id identify its version.
func listETag(count int64, maxID uint, q services.ListQuery) string {
	h := fnv.New32a()
	for _, part := range []string{q.Category, q.State, q.Source, q.Search} {
		_, _ = h.Write([]byte(strings.ToLower(part)))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf(`W/"schemes:%d:%d:%08x"`, count, maxID, h.Sum32())
}

// etagMatches handles the comma-separated and wildcard forms of If-None-Match.
func etagMatches(inm, etag string) bool {
	for _, candidate := range strings.Split(inm, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// ListSchemes godoc
// @ID          listSchemes
// @Summary     List schemes
// @Description Returns schemes in id order. Filters are case-insensitive substrings combined with AND.
// @Description A state filter always keeps national and regional schemes. Search matches name, description and keywords.
// @Tags        Schemes
// @Produce     json
//
// @Param       category       query   string  false  "Category substring"          example(agriculture)
// @Param       state          query   string  false  "State substring"             example(Karnataka)
// @Param       source         query   string  false  "Issuing authority substring" example(Central)
// @Param       search         query   string  false  "Free-text search"            example(scholarship)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {array}   domain.Scheme
// @Header      200  {string}  ETag  "Weak ETag for the current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Failed to fetch schemes"
// @Router      /schemes [get]
func (h *Handlers) ListSchemes(c *gin.Context) {
	ctx := c.Request.Context()
	q := listQuery(c)

	// Best effort: a stats failure only costs the conditional response.
	if count, maxID, err := h.schemes.Stats(ctx); err == nil {
		etag := listETag(count, maxID, q)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && etagMatches(inm, etag) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	list, err := h.schemes.List(ctx, q)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, msgListFailed, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// GetScheme godoc
// @ID          getScheme
// @Summary     Get a scheme
// @Tags        Schemes
// @Produce     json
//
// @Param       id   path  int  true  "Scheme ID"  minimum(1) example(3)
//
// @Success     200  {object}  domain.Scheme
// @Failure     400  {object}  handlers.ErrorResponse  "Non-numeric id"
// @Failure     404  {object}  handlers.ErrorResponse  "Scheme not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /schemes/{id} [get]
func (h *Handlers) GetScheme(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "scheme id must be a positive integer")
		return
	}

	s, err := h.schemes.Get(c.Request.Context(), uint(id))
	switch {
	case errors.Is(err, services.ErrSchemeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeFetchFailed, msgFetchFailed, err)
	default:
		ok(c, http.StatusOK, s)
	}
}

// CreateScheme godoc
// @ID          createScheme
// @Summary     Add a scheme
// @Description Validates and stores a scheme. The store assigns the id.
// @Tags        Schemes
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SchemeInput  true  "Scheme"
//
// @Success     201  {object}  domain.Scheme
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /schemes [post]
func (h *Handlers) CreateScheme(c *gin.Context) {
	var in SchemeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, bindMessage(err))
		return
	}

	s := in.toDomain()
	if err := h.schemes.Create(c.Request.Context(), s); err != nil {
		if errors.Is(err, services.ErrInvalidScheme) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, strings.TrimPrefix(err.Error(), services.ErrInvalidScheme.Error()+": "))
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, msgInternal, err)
		return
	}
	ok(c, http.StatusCreated, s)
}
