package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var manifestMediaTypes = []string{
	"application/vnd.docker.distribution.manifest.v2+json",
	"application/vnd.docker.distribution.manifest.list.v2+json",
	"application/vnd.oci.image.manifest.v1+json",
	"application/vnd.oci.image.index.v1+json",
}

// Verifier checks that an image exists in its registry
type Verifier struct {
	Client *http.Client
	Image  *Image
	Scheme string
	Host   string
}

// NewVerifier creates an image verifier from an image reference
func NewVerifier(input string, insecure bool) (*Verifier, error) {
	log.Infof("creating new verifier from '%s'", input)

	image, err := ParseImage(input)
	if err != nil {
		return nil, err
	}

	verifier := Verifier{
		Client: http.DefaultClient,
		Image:  image,
		Scheme: "https",
		Host:   image.Domain,
	}

	if insecure {
		log.Debugf("setting scheme to http")
		verifier.Scheme = "http"
	}

	// the docker hub registry is not served from the docker.io domain
	if image.Domain == "docker.io" {
		verifier.Host = "registry-1.docker.io"
	}

	return &verifier, nil
}

// Verify returns true if the manifest for the image can be found in the registry
func (v *Verifier) Verify(ctx context.Context) (bool, error) {
	url := v.Scheme + "://" + v.Host + "/v2/" + v.Image.Path + "/manifests/" + v.Image.Reference()
	log.Infof("verifying image with URL %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, errors.Wrap(err, "unable to create new request for "+url)
	}
	req.Header.Set("Accept", strings.Join(manifestMediaTypes, ", "))

	res, err := v.Client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "unable to make http request")
	}
	res.Body.Close()

	code := res.StatusCode
	log.Debugf("got response status %s(%d) when requesting manifest", res.Status, code)

	// the registry wants a token, get one and try again
	if code == http.StatusUnauthorized {
		token, err := v.bearerTokenAuth(ctx, res.Header.Get("Www-Authenticate"))
		if err != nil {
			return false, errors.Wrap(err, "failed to get bearer token")
		}

		req.Header.Set("Authorization", "Bearer "+token)

		authres, err := v.Client.Do(req)
		if err != nil {
			return false, errors.Wrap(err, "unable to make authenticated request")
		}
		authres.Body.Close()

		log.Debugf("got response status %s(%d) when requesting authenticated manifest", authres.Status, authres.StatusCode)
		code = authres.StatusCode
	}

	switch {
	case code > 499:
		return false, fmt.Errorf("verify failed, status: %d", code)
	case code > 299:
		log.Warnf("image %s not found, got status %d", v.Image.Name, code)
		return false, nil
	}

	log.Debugf("image %s seems to exist, got status %d", v.Image.Name, code)
	return true, nil
}

// bearerTokenAuth requests the anonymous bearer token referenced in a Www-Authenticate header
func (v *Verifier) bearerTokenAuth(ctx context.Context, header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("unsupported authenticate header '%s'", header)
	}
	log.Debugf("parsing bearer token header: %s", header)

	var realm, scope, service string
	for _, p := range strings.Split(strings.TrimPrefix(header, "Bearer "), ",") {
		p = strings.ReplaceAll(p, "\"", "")
		k, val, _ := strings.Cut(p, "=")
		switch k {
		case "realm":
			realm = val
		case "scope":
			scope = val
		case "service":
			service = val
		default:
			log.Debugf("ignoring part of Www-Authenticate header: %s", p)
		}
	}

	if realm == "" {
		return "", errors.New("missing realm in authenticate header")
	}

	url := fmt.Sprintf("%s?scope=%s&service=%s", realm, scope, service)
	log.Debugf("requesting auth token from url %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "unable to create new request for "+url)
	}

	res, err := v.Client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "unable to request token")
	}
	defer res.Body.Close()

	if res.StatusCode > 299 {
		return "", errors.New("bad response when requesting token: " + res.Status)
	}

	response := struct {
		Token string `json:"token"`
	}{}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return "", errors.Wrap(err, "failed to decode token")
	}

	return response.Token, nil
}
