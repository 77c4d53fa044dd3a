package user

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elokman/health-api/internal/handler/handlertest"
	"github.com/elokman/health-api/internal/model"
	"github.com/elokman/health-api/internal/repository"
	"github.com/elokman/health-api/internal/repository/memory"
	"github.com/elokman/health-api/internal/service/user"
)

func setup(t *testing.T) (*gin.Engine, *repository.Repositories, int64) {
	t.Helper()
	repos := memory.NewRepositories()
	u := &model.User{Username: "mehmet", Email: "mehmet@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return handlertest.Engine(NewHandler(user.NewService(repos)).RegisterRoutes), repos, u.ID
}

func TestGetProfile(t *testing.T) {
	r, _, id := setup(t)

	resp := handlertest.MakeRequest(r, http.MethodGet, "/api/users/profile", nil, handlertest.Token(t, id))
	require.Equal(t, http.StatusOK, resp.Code)
	var u model.User
	resp.Decode(t, &u)
	assert.Equal(t, "mehmet", u.Username)
	assert.NotContains(t, resp.Body.String(), "password")

	resp = handlertest.MakeRequest(r, http.MethodGet, "/api/users/profile", nil, handlertest.Token(t, 999))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateProfile(t *testing.T) {
	r, _, id := setup(t)
	token := handlertest.Token(t, id)

	resp := handlertest.MakeRequest(r, http.MethodPut, "/api/users/profile",
		`{"fullName":"Mehmet Kaya","birthDate":"1985-04-12","gender":"erkek","phoneNumber":null}`, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var out model.ProfileResponse
	resp.Decode(t, &out)
	assert.Equal(t, "profile updated successfully", out.Message)
	require.NotNil(t, out.User.FullName)
	assert.Equal(t, "Mehmet Kaya", *out.User.FullName)
	require.NotNil(t, out.User.BirthDate)
	assert.Equal(t, "1985-04-12", out.User.BirthDate.Format("2006-01-02"))
	assert.Nil(t, out.User.PhoneNumber)

	resp = handlertest.MakeRequest(r, http.MethodPut, "/api/users/profile", `{"gender":null}`, token)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.Decode(t, &out)
	assert.Nil(t, out.User.Gender)
	require.NotNil(t, out.User.FullName)
}

func TestUpdateProfileValidation(t *testing.T) {
	r, _, id := setup(t)
	token := handlertest.Token(t, id)
	tomorrow := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"future birth date", `{"birthDate":"` + tomorrow + `"}`, "cannot be in the future"},
		{"bad phone", `{"phoneNumber":"+1 555 0100"}`, "must be a valid mobile phone number"},
		{"no known field", `{"username":"hacker"}`, "at least one field must be provided"},
		{"not an object", `[]`, "has an invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handlertest.MakeRequest(r, http.MethodPut, "/api/users/profile", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.want)
		})
	}
}

func TestHealthSummary(t *testing.T) {
	r, repos, id := setup(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		require.NoError(t, repos.Medications.Create(ctx, &model.Medication{Owned: model.Owned{UserID: id}, Name: "Med", Dose: "1"}))
	}
	require.NoError(t, repos.Reports.Create(ctx, &model.Report{Owned: model.Owned{UserID: id}, Type: "MR", Status: "normal"}))
	require.NoError(t, repos.Medications.Create(ctx, &model.Medication{Owned: model.Owned{UserID: id + 1}, Name: "Other", Dose: "1"}))

	resp := handlertest.MakeRequest(r, http.MethodGet, "/api/users/health-summary", nil, handlertest.Token(t, id))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var summary model.HealthSummary
	resp.Decode(t, &summary)
	assert.Equal(t, "mehmet", summary.User.Name)
	assert.Len(t, summary.Medications, user.SummaryLimit)
	assert.Len(t, summary.Reports, 1)
	assert.NotNil(t, summary.Appointments)
	assert.Empty(t, summary.Appointments)
}
