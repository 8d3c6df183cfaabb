package registry

import (
	"github.com/docker/distribution/reference"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Image is a parsed container image reference
type Image struct {
	// Name is the fully qualified repository name, ie. docker.io/library/nginx
	Name   string
	Domain string
	Path   string
	Tag    string
	Digest string
}

// ParseImage parses an image URI as it would be given in a container definition.  Docker
// hub short names are normalized and an image without a tag or digest gets the latest tag.
func ParseImage(input string) (*Image, error) {
	if input == "" {
		return nil, errors.New("image reference is empty")
	}

	named, err := reference.ParseNormalizedNamed(input)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid image reference '%s'", input)
	}

	image := Image{
		Name:   named.Name(),
		Domain: reference.Domain(named),
		Path:   reference.Path(named),
	}

	if t, ok := named.(reference.Tagged); ok {
		image.Tag = t.Tag()
	}

	if d, ok := named.(reference.Digested); ok {
		image.Digest = d.Digest().String()
	}

	if image.Tag == "" && image.Digest == "" {
		image.Tag = "latest"
	}

	log.Debugf("parsed image reference '%s' into %+v", input, image)

	return &image, nil
}

// Reference returns the digest or tag used to look up the image manifest, preferring the digest
func (i *Image) Reference() string {
	if i.Digest != "" {
		return i.Digest
	}
	return i.Tag
}
