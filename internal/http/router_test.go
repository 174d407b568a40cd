package http

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := decodeBody(t, w); resp["status"] != "ok" {
		t.Fatalf("status field = %v", resp["status"])
	}
}

func TestTutorProfileRoleGuard(t *testing.T) {
	f := newAPIFixture(t)
	studentCookies := f.registerStudent(t, "a@x.com", "+541100000001")
	tutorCookies := f.registerTutor(t, "t@x.com", "+541100000002")

	profileBody := `{"fullName":"Luis Perez","bio":"Fisica y matematica","experience":"5 años","subjects":["math"],"grades":["8"]}`

	w := f.do(http.MethodPost, "/tutor-profile", profileBody, studentCookies)
	if w.Code != http.StatusForbidden {
		t.Fatalf("student create profile: status = %d, want 403", w.Code)
	}
	if resp := decodeBody(t, w); resp["message"] != "Forbidden" {
		t.Fatalf("message = %v", resp["message"])
	}

	w = f.do(http.MethodPost, "/tutor-profile", profileBody, tutorCookies)
	if w.Code != http.StatusOK {
		t.Fatalf("tutor create profile: status = %d, body %s", w.Code, w.Body.String())
	}

	w = f.do(http.MethodGet, "/tutor-profile", "", tutorCookies)
	if w.Code != http.StatusOK {
		t.Fatalf("tutor get profile: status = %d", w.Code)
	}

	// El listado es publico: sin sesion tambien responde.
	w = f.do(http.MethodGet, "/tutor-profile/all", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public list: status = %d", w.Code)
	}
}

func TestEnrollmentRoleGuardAndOwnership(t *testing.T) {
	f := newAPIFixture(t)
	studentCookies := f.registerStudent(t, "a@x.com", "+541100000001")
	tutorCookies := f.registerTutor(t, "t@x.com", "+541100000002")

	applicationBody := `{"tutorId":"some-tutor","subject":"math","grade":"8","preferredSchedule":"weekends","goals":"pass the exam"}`

	w := f.do(http.MethodPost, "/enrollment-applications", applicationBody, tutorCookies)
	if w.Code != http.StatusForbidden {
		t.Fatalf("tutor create application: status = %d, want 403", w.Code)
	}

	w = f.do(http.MethodPost, "/enrollment-applications", applicationBody, studentCookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("student create application: status = %d, body %s", w.Code, w.Body.String())
	}

	// Un tutor solo puede listar su propia bandeja.
	w = f.do(http.MethodGet, "/enrollment-applications/tutor/some-tutor", "", tutorCookies)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign inbox: status = %d, want 403", w.Code)
	}

	w = f.do(http.MethodGet, "/enrollment-applications/student", "", studentCookies)
	if w.Code != http.StatusOK {
		t.Fatalf("student list: status = %d, body %s", w.Code, w.Body.String())
	}

	w = f.do(http.MethodGet, "/enrollment-applications", "", nil)
	if w.Code != http.StatusNotFound && w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status = %d", w.Code)
	}
}

func TestLoginThrottle(t *testing.T) {
	f := newAPIFixture(t)

	body := `{"email":"nobody@x.com","password":"Secret1!pass"}`
	for i := 0; i < 5; i++ {
		w := f.do(http.MethodPost, "/auth/login", body, nil)
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d throttled under the limit", i+1)
		}
	}
	w := f.do(http.MethodPost, "/auth/login", body, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if resp := decodeBody(t, w); resp["message"] != "Too many requests" {
		t.Fatalf("message = %v", resp["message"])
	}
}

func TestRegisterThrottleIsStricter(t *testing.T) {
	f := newAPIFixture(t)

	// Tres intentos por minuto para altas; el cuarto se corta aunque los
	// anteriores hayan fallado.
	body := `{"firstName":"A","lastName":"B","email":"bad","phoneNumber":"x","password":"p","confirmPassword":"p"}`
	for i := 0; i < 3; i++ {
		w := f.do(http.MethodPost, "/auth/register/tutor", body, nil)
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d throttled under the limit", i+1)
		}
	}
	w := f.do(http.MethodPost, "/auth/register/tutor", body, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestRefreshThrottle(t *testing.T) {
	f := newAPIFixture(t)

	// Sin cookie cada intento es 401; el limite corta igual a partir del sexto.
	for i := 0; i < 5; i++ {
		w := f.do(http.MethodPost, "/auth/refresh", "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: status = %d, want 401", i+1, w.Code)
		}
	}
	w := f.do(http.MethodPost, "/auth/refresh", "", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestUploadsUnavailableWithoutStorage(t *testing.T) {
	f := newAPIFixture(t)
	cookies := f.registerStudent(t, "a@x.com", "+541100000001")

	w := f.do(http.MethodPost, "/upload/image", "", cookies)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
