package config

type Backend struct {
	URL string `env:"BACKEND_URL" envDefault:"http://localhost:8081"`
}

var _ BackendConfig = Backend{}

func (b Backend) GetBackendURL() string {
	return b.URL
}
