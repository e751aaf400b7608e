package ports

import "github.com/aretw0/datadesk/pkg/domain"

// Codec converts between file contents and datasets.
// format is an extension or file name such as "csv", ".json" or "data.csv".
type Codec interface {
	Decode(format string, data []byte) (domain.Dataset, error)
	Encode(format string, ds domain.Dataset) ([]byte, error)
}
