package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenMiddleware checks the X-Auth-Token header, a bcrypt hash of the shared token, on
// every request that isn't for a public URL
func TokenMiddleware(psk []byte, public map[string]string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := public[r.URL.Path]; ok {
			log.Debugf("not authenticating public url %s", r.URL.Path)
			h.ServeHTTP(w, r)
			return
		}

		log.Debugf("authenticating protected url %s", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")

		header := r.Header.Get("X-Auth-Token")
		if err := bcrypt.CompareHashAndPassword([]byte(header), psk); err != nil {
			log.Warnf("unable to authenticate request for %s: %s", r.URL.Path, err)
			w.WriteHeader(http.StatusForbidden)
			return
		}

		h.ServeHTTP(w, r)
	})
}
