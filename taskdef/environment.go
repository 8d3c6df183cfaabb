package taskdef

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
)

// ParseEnvironment parses a block of newline separated NAME=value pairs.  Blank lines
// are skipped and surrounding whitespace is trimmed.  The value is everything after the
// first '=', so values may contain '='.  Pairs are returned in the order their name was
// first seen; a repeated name keeps its first position and takes the last value.
func ParseEnvironment(block string) ([]*ecs.KeyValuePair, error) {
	pairs := []*ecs.KeyValuePair{}
	index := map[string]int{}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, parseError(fmt.Sprintf("Cannot parse the environment variable '%s'. Environment variable pairs must be of the form NAME=value.", line))
		}

		if i, exists := index[name]; exists {
			pairs[i].Value = aws.String(value)
			continue
		}

		index[name] = len(pairs)
		pairs = append(pairs, &ecs.KeyValuePair{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}

	return pairs, nil
}
