package medication

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elokman/health-api/internal/handler/handlertest"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository/memory"
	"github.com/elokman/health-api/pkg/httputil"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	h := NewHandler(memory.NewMedicationRepository())
	return handlertest.Engine(h.RegisterRoutes)
}

type listResponse struct {
	Data       []model.Medication  `json:"data"`
	Pagination httputil.Pagination `json:"pagination"`
}

func create(t *testing.T, r *gin.Engine, token string, body interface{}) model.Medication {
	t.Helper()
	resp := handlertest.MakeRequest(r, http.MethodPost, "/api/medications", body, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var med model.Medication
	resp.Decode(t, &med)
	return med
}

func TestMedicationCRUD(t *testing.T) {
	r := setup(t)
	token := handlertest.Token(t, 1)

	med := create(t, r, token, map[string]interface{}{
		"name": "  Aspirin <b>",
		"dose": "100mg",
		"schedules": []map[string]string{
			{"period": "morning", "time": "08:00"},
		},
	})
	assert.NotZero(t, med.ID)
	assert.Equal(t, int64(1), med.UserID)
	assert.Equal(t, "Aspirin &lt;b&gt;", med.Name)
	require.Len(t, med.Schedules, 1)

	path := fmt.Sprintf("/api/medications/%d", med.ID)
	resp := handlertest.MakeRequest(r, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = handlertest.MakeRequest(r, http.MethodPut, path, map[string]interface{}{"dose": "200mg"}, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated model.Medication
	resp.Decode(t, &updated)
	assert.Equal(t, "200mg", updated.Dose)
	assert.Equal(t, med.Name, updated.Name)
	assert.Len(t, updated.Schedules, 1)

	resp = handlertest.MakeRequest(r, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = handlertest.MakeRequest(r, http.MethodGet, path, nil, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMedicationOwnership(t *testing.T) {
	r := setup(t)
	owner := handlertest.Token(t, 1)
	other := handlertest.Token(t, 2)

	med := create(t, r, owner, map[string]string{"name": "Metformin", "dose": "500mg"})
	path := fmt.Sprintf("/api/medications/%d", med.ID)

	assert.Equal(t, http.StatusNotFound, handlertest.MakeRequest(r, http.MethodGet, path, nil, other).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.MakeRequest(r, http.MethodPut, path, map[string]string{"dose": "1g"}, other).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.MakeRequest(r, http.MethodDelete, path, nil, other).Code)
	assert.Equal(t, http.StatusOK, handlertest.MakeRequest(r, http.MethodGet, path, nil, owner).Code)

	resp := handlertest.MakeRequest(r, http.MethodGet, "/api/medications", nil, other)
	var list listResponse
	resp.Decode(t, &list)
	assert.Empty(t, list.Data)
	assert.Equal(t, 0, list.Pagination.TotalItems)
}

func TestMedicationPagination(t *testing.T) {
	r := setup(t)
	token := handlertest.Token(t, 1)
	for i := 0; i < 12; i++ {
		create(t, r, token, map[string]string{"name": fmt.Sprintf("Med %02d", i), "dose": "1"})
	}

	resp := handlertest.MakeRequest(r, http.MethodGet, "/api/medications?page=2&limit=5", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	var list listResponse
	resp.Decode(t, &list)
	assert.Len(t, list.Data, 5)
	assert.Equal(t, httputil.Pagination{
		CurrentPage: 2, TotalPages: 3, TotalItems: 12, ItemsPerPage: 5,
		HasNextPage: true, HasPreviousPage: true,
	}, list.Pagination)

	resp = handlertest.MakeRequest(r, http.MethodGet, "/api/medications", nil, token)
	resp.Decode(t, &list)
	assert.Len(t, list.Data, 10)
	assert.Equal(t, "Med 11", list.Data[0].Name)

	assert.Equal(t, http.StatusBadRequest, handlertest.MakeRequest(r, http.MethodGet, "/api/medications?limit=101", nil, token).Code)
	for _, query := range []string{"page=0", "limit=0", "page=-1", "limit=-1"} {
		resp = handlertest.MakeRequest(r, http.MethodGet, "/api/medications?"+query, nil, token)
		assert.Equal(t, http.StatusBadRequest, resp.Code, query)
	}
	assert.Equal(t, http.StatusBadRequest, handlertest.MakeRequest(r, http.MethodGet, "/api/medications?page=abc", nil, token).Code)
}

func TestMedicationValidation(t *testing.T) {
	r := setup(t)
	token := handlertest.Token(t, 1)
	med := create(t, r, token, map[string]string{"name": "Aspirin", "dose": "100mg"})
	path := fmt.Sprintf("/api/medications/%d", med.ID)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		field  string
	}{
		{"missing name", http.MethodPost, "/api/medications", map[string]string{"dose": "1"}, "name"},
		{"blank dose", http.MethodPost, "/api/medications", map[string]string{"name": "Aspirin", "dose": "   "}, "dose"},
		{"bad schedule period", http.MethodPost, "/api/medications", map[string]interface{}{
			"name": "Aspirin", "dose": "1", "schedules": []map[string]string{{"period": "brunch", "time": "10:00"}},
		}, "schedules[0].period"},
		{"bad schedule time", http.MethodPost, "/api/medications", map[string]interface{}{
			"name": "Aspirin", "dose": "1", "schedules": []map[string]string{{"period": "noon", "time": "25:00"}},
		}, "schedules[0].time"},
		{"null name", http.MethodPut, path, `{"name":null}`, "name"},
		{"short name", http.MethodPut, path, map[string]string{"name": "A"}, "name"},
		{"bad id", http.MethodGet, "/api/medications/abc", nil, "id"},
		{"zero id", http.MethodDelete, "/api/medications/0", nil, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handlertest.MakeRequest(r, tt.method, tt.path, tt.body, token)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			var body struct {
				Errors []struct {
					Field   string `json:"field"`
					Message string `json:"message"`
				} `json:"errors"`
			}
			resp.Decode(t, &body)
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tt.field, body.Errors[0].Field)
		})
	}
}

func TestMedicationEmptyUpdate(t *testing.T) {
	r := setup(t)
	token := handlertest.Token(t, 1)
	med := create(t, r, token, map[string]string{"name": "Aspirin", "dose": "100mg"})

	resp := handlertest.MakeRequest(r, http.MethodPut, fmt.Sprintf("/api/medications/%d", med.ID), map[string]string{"unknown": "x"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"errors":[{"message":"at least one field must be provided"}]}`, resp.Body.String())

	resp = handlertest.MakeRequest(r, http.MethodPut, fmt.Sprintf("/api/medications/%d", med.ID), "", token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMedicationRequiresToken(t *testing.T) {
	r := setup(t)
	resp := handlertest.MakeRequest(r, http.MethodGet, "/api/medications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMedicationEmptyObjectUpdate(t *testing.T) {
	r := setup(t)
	token := handlertest.Token(t, 1)
	med := create(t, r, token, map[string]string{"name": "Aspirin", "dose": "100mg"})

	resp := handlertest.MakeRequest(r, http.MethodPut, fmt.Sprintf("/api/medications/%d", med.ID), `{}`, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"errors":[{"message":"at least one field must be provided"}]}`, resp.Body.String())
}
