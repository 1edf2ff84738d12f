// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/wardenhq/warden/internal/account"
	"github.com/wardenhq/warden/internal/httpapi"
	"github.com/wardenhq/warden/internal/identity/memory"
)

var _ = Describe("User API over HTTP", func() {
	var (
		server *httptest.Server
		client *http.Client
	)

	post := func(path string, body any) (int, map[string]any) {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())

		resp, err := client.Post(server.URL+path, "application/json", bytes.NewReader(raw))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		var decoded map[string]any
		Expect(json.Unmarshal(payload, &decoded)).To(Succeed())
		return resp.StatusCode, decoded
	}

	user := func() map[string]string {
		return map[string]string{
			"username": "testuser",
			"email":    "test@example.com",
			"password": password,
			"birthday": "2000-01-15",
		}
	}

	BeforeEach(func() {
		svc, err := account.NewService(memory.NewRepository(), testScheme,
			account.WithClock(today),
			account.WithLogger(quietLogger()),
		)
		Expect(err).NotTo(HaveOccurred())

		server = httptest.NewServer(httpapi.NewHandler(svc, httpapi.WithLogger(quietLogger())))
		client = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 10 * time.Second}
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("POST /api/user/register", func() {
		It("creates a user and omits the password", func() {
			status, body := post("/api/user/register", user())

			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(HaveKey("id"))
			Expect(body).To(HaveKeyWithValue("username", "testuser"))
			Expect(body).To(HaveKeyWithValue("email", "test@example.com"))
			Expect(body).NotTo(HaveKey("password"))
		})

		It("rejects a weak password", func() {
			u := user()
			u["password"] = "123"
			status, _ := post("/api/user/register", u)
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("rejects a duplicate email", func() {
			status, _ := post("/api/user/register", user())
			Expect(status).To(Equal(http.StatusCreated))

			status, body := post("/api/user/register", user())
			Expect(status).To(Equal(http.StatusConflict))
			Expect(body).To(HaveKeyWithValue("statusCode", BeNumerically("==", http.StatusConflict)))
		})

		DescribeTable("rejects invalid input",
			func(field, value, message string) {
				u := user()
				u[field] = value
				status, body := post("/api/user/register", u)

				Expect(status).To(Equal(http.StatusBadRequest))
				Expect(body).To(HaveKeyWithValue("message", ContainSubstring(message)))
			},
			Entry("invalid email", "email", "invalid-email", "email must be a valid email"),
			Entry("invalid birthday", "birthday", "invalid-date", "birthday must be a date string"),
			Entry("too young", "birthday", "2022-01-01", "more than 6"),
			Entry("short username", "username", "ab", "between 3 and 50"),
		)
	})

	Describe("POST /api/user/login", func() {
		BeforeEach(func() {
			status, _ := post("/api/user/register", user())
			Expect(status).To(Equal(http.StatusCreated))
		})

		It("logs in with correct credentials", func() {
			status, body := post("/api/user/login", map[string]string{
				"email":    "test@example.com",
				"password": password,
			})

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("username", "testuser"))
			Expect(body).To(HaveKeyWithValue("email", "test@example.com"))
			Expect(body).NotTo(HaveKey("password"))
		})

		It("returns 404 for a wrong password", func() {
			status, _ := post("/api/user/login", map[string]string{
				"email":    "test@example.com",
				"password": "WrongPassword123!",
			})
			Expect(status).To(Equal(http.StatusNotFound))
		})

		It("returns 404 for an unknown email", func() {
			status, _ := post("/api/user/login", map[string]string{
				"email":    "nonexistent@example.com",
				"password": password,
			})
			Expect(status).To(Equal(http.StatusNotFound))
		})
	})
})
