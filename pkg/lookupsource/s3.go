package lookupsource

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/oakd/pkg/ombox"
)

// fetchS3 downloads an s3://bucket/key object and decodes it as lookup
// data. Credentials are resolved through the AWS SDK's standard chain
// (environment, shared config, instance role), the same
// awsconfig.LoadDefaultConfig entry point the teacher's S3 store uses —
// with an explicit static-credentials override when OAKD_AWS_ACCESS_KEY_ID
// / OAKD_AWS_SECRET_ACCESS_KEY are set, matching the teacher's
// access_key_id/secret_access_key store option.
func fetchS3(ctx context.Context, u *url.URL) (map[string][]byte, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, ombox.New(ombox.ErrInvalidArgument, "s3 lookup_data location must be s3://bucket/key, got %q", u.String())
	}

	var opts []func(*awsconfig.LoadOptions) error
	accessKey := os.Getenv("OAKD_AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("OAKD_AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, ombox.Wrap(ombox.ErrInternal, fmt.Errorf("load AWS config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg)
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, ombox.Wrap(ombox.ErrInternal, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err))
	}
	defer out.Body.Close()

	return Decode(out.Body)
}
