package keys

import (
	"context"
	"fmt"

	"github.com/blinkdrive/blinkauth/internal/common"
)

// Settings select and parameterise a Source.
type Settings struct {
	Source string
	Secret string
	S3     S3Settings
}

// NewSource returns the Source named by st.Source. An empty name means
// ephemeral.
func NewSource(ctx context.Context, st Settings) (Source, error) {
	switch st.Source {
	case SourceEphemeral, "":
		return Ephemeral{}, nil
	case SourceStatic:
		return Static{Secret: []byte(st.Secret)}, nil
	case SourceS3:
		client, err := NewS3Client(ctx, st.S3)
		if err != nil {
			return nil, err
		}
		return NewS3(client, st.S3.Bucket, st.S3.Object), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownKeySource, st.Source)
	}
}
