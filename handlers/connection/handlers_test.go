package connection

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingup/backend/handlers/auth"
	"pingup/backend/services/events"
)

var userCols = []string{
	"id", "email", "username", "full_name", "bio", "location",
	"profile_picture", "cover_photo", "created_at",
	"followers", "following", "connections",
}

func userRow(id string) []driver.Value {
	return []driver.Value{
		id, id + "@example.com", id, "User " + id, "", "",
		"", "", time.Now(), "{}", "{}", "{}",
	}
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func authedRequest(t *testing.T, userID, method, path, body string) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(auth.Claims{UserID: userID})
	require.NoError(t, err)
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSendConnectionRequestHandler(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	send := func(t *testing.T, db *sql.DB) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		handler := SendConnectionRequestHandler(db, events.NewDispatcher(db, nil))
		handler(rec, authedRequest(t, "u1", "POST", "/api/user/connect", `{"id":"u2"}`))
		return rec
	}

	t.Run("20th request within 24 hours succeeds", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(CountRecentRequestsQuery).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(19))
		mock.ExpectQuery(FindPairRequestQuery).WithArgs("u1", "u2").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(CreateRequestQuery).WithArgs("u1", "u2").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))

		rec := send(t, db)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Connection request sent successfully", body["message"])
	})

	t.Run("21st request within 24 hours is rate limited", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(CountRecentRequestsQuery).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(20))

		rec := send(t, db)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "You have sent more than 20 connection requests in the last 24 hours", body["message"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("accepted pair reports already connected regardless of direction", func(t *testing.T) {
		for _, from := range []string{"u1", "u2"} {
			to := "u2"
			if from == "u2" {
				to = "u1"
			}
			db, mock := newMock(t)
			mock.ExpectQuery(CountRecentRequestsQuery).WithArgs("u1").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(FindPairRequestQuery).WithArgs("u1", "u2").
				WillReturnRows(sqlmock.NewRows([]string{"id", "from_user_id", "to_user_id", "status"}).
					AddRow(7, from, to, StatusAccepted))

			rec := send(t, db)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "You are already connected with this user", body["message"])
		}
	})

	t.Run("pending pair reports pending", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(CountRecentRequestsQuery).WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(FindPairRequestQuery).WithArgs("u1", "u2").
			WillReturnRows(sqlmock.NewRows([]string{"id", "from_user_id", "to_user_id", "status"}).
				AddRow(7, "u2", "u1", StatusPending))

		rec := send(t, db)

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Connection requests pending", body["message"])
	})

	t.Run("self connect rejected", func(t *testing.T) {
		db, _ := newMock(t)
		rec := httptest.NewRecorder()
		handler := SendConnectionRequestHandler(db, events.NewDispatcher(db, nil))
		handler(rec, authedRequest(t, "u1", "POST", "/api/user/connect", `{"id":"u1"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAcceptConnectionRequestHandler(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	t.Run("pending request addressed to accepter", func(t *testing.T) {
		db, mock := newMock(t)
		// u2 accepts the request u1 sent
		mock.ExpectExec(AcceptRequestQuery).WithArgs("u1", "u2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := httptest.NewRecorder()
		handler := AcceptConnectionRequestHandler(db, events.NewDispatcher(db, nil))
		handler(rec, authedRequest(t, "u2", "POST", "/api/user/accept", `{"id":"u1"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Connection accepted successfully", body["message"])
	})

	t.Run("wrong direction is not found", func(t *testing.T) {
		db, mock := newMock(t)
		// u1 tries to accept its own outbound request
		mock.ExpectExec(AcceptRequestQuery).WithArgs("u2", "u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rec := httptest.NewRecorder()
		handler := AcceptConnectionRequestHandler(db, events.NewDispatcher(db, nil))
		handler(rec, authedRequest(t, "u1", "POST", "/api/user/accept", `{"id":"u2"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Connection not found", body["message"])
	})
}

func TestDeclineConnectionRequestHandler(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	t.Run("pending request declined", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(DeclineRequestQuery).WithArgs("u1", "u2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := httptest.NewRecorder()
		DeclineConnectionRequestHandler(db)(rec, authedRequest(t, "u2", "POST", "/api/user/decline", `{"id":"u1"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
	})

	t.Run("nothing to decline is not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(DeclineRequestQuery).WithArgs("u1", "u2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rec := httptest.NewRecorder()
		DeclineConnectionRequestHandler(db)(rec, authedRequest(t, "u2", "POST", "/api/user/decline", `{"id":"u1"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetUserConnectionsHandler(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	db, mock := newMock(t)
	mock.ExpectQuery(SelectConnectionsQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(userRow("u2")...))
	mock.ExpectQuery(SelectFollowersQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(userRow("u3")...))
	mock.ExpectQuery(SelectFollowingQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(userRow("u3")...).AddRow(userRow("u4")...))
	mock.ExpectQuery(SelectPendingRequestersQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(userRow("u5")...))

	rec := httptest.NewRecorder()
	GetUserConnectionsHandler(db)(rec, authedRequest(t, "u1", "GET", "/api/user/connections", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	assert.Len(t, body["connections"], 1)
	assert.Len(t, body["followers"], 1)
	assert.Len(t, body["following"], 2)
	assert.Len(t, body["pendingConnections"], 1)

	pending := body["pendingConnections"].([]interface{})
	assert.Equal(t, "u5", pending[0].(map[string]interface{})["_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestConnectionLifecycle scripts the full exchange over one mock:
// u1 requests, u2 accepts, both sides list each other, and a repeat
// request reports the standing connection.
func TestConnectionLifecycle(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	db, mock := newMock(t)
	// notification side effects land on a separate mock so they cannot
	// disturb the scripted expectations
	eventsDB, _ := newMock(t)
	dispatcher := events.NewDispatcher(eventsDB, nil)

	// u1 sends a request to u2
	mock.ExpectQuery(CountRecentRequestsQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(FindPairRequestQuery).WithArgs("u1", "u2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(CreateRequestQuery).WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	rec := httptest.NewRecorder()
	SendConnectionRequestHandler(db, dispatcher)(rec, authedRequest(t, "u1", "POST", "/api/user/connect", `{"id":"u2"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Connection request sent successfully", decodeBody(t, rec)["message"])

	// u2 accepts it
	mock.ExpectExec(AcceptRequestQuery).WithArgs("u1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec = httptest.NewRecorder()
	AcceptConnectionRequestHandler(db, dispatcher)(rec, authedRequest(t, "u2", "POST", "/api/user/accept", `{"id":"u1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Connection accepted successfully", decodeBody(t, rec)["message"])

	// both sides now list each other as a connection
	for _, side := range []struct{ caller, other string }{{"u1", "u2"}, {"u2", "u1"}} {
		mock.ExpectQuery(SelectConnectionsQuery).WithArgs(side.caller).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(userRow(side.other)...))
		mock.ExpectQuery(SelectFollowersQuery).WithArgs(side.caller).
			WillReturnRows(sqlmock.NewRows(userCols))
		mock.ExpectQuery(SelectFollowingQuery).WithArgs(side.caller).
			WillReturnRows(sqlmock.NewRows(userCols))
		mock.ExpectQuery(SelectPendingRequestersQuery).WithArgs(side.caller).
			WillReturnRows(sqlmock.NewRows(userCols))

		rec = httptest.NewRecorder()
		GetUserConnectionsHandler(db)(rec, authedRequest(t, side.caller, "GET", "/api/user/connections", ""))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		connections := body["connections"].([]interface{})
		require.Len(t, connections, 1)
		assert.Equal(t, side.other, connections[0].(map[string]interface{})["_id"])
		assert.Empty(t, body["pendingConnections"])
	}

	// a repeat request from u1 reports the standing connection
	mock.ExpectQuery(CountRecentRequestsQuery).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(FindPairRequestQuery).WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_user_id", "to_user_id", "status"}).
			AddRow(1, "u1", "u2", StatusAccepted))

	rec = httptest.NewRecorder()
	SendConnectionRequestHandler(db, dispatcher)(rec, authedRequest(t, "u1", "POST", "/api/user/connect", `{"id":"u2"}`))
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "You are already connected with this user", body["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
