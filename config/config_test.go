package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/ab-dashboard/config"
)

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		Expect(os.Chdir(tempDir)).To(Succeed())
		os.Unsetenv(config.ResultsAPIEnv)
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		os.Unsetenv(config.ResultsAPIEnv)
		os.Unsetenv("RESULTS_API_RELAY_STATUS")
		os.Unsetenv("LOGGING_LEVEL")
	})

	Describe("ResolveBaseURL", func() {
		It("should return the default when unset", func() {
			Expect(config.ResolveBaseURL()).To(Equal("http://localhost:8004"))
		})

		It("should return the default when empty", func() {
			os.Setenv(config.ResultsAPIEnv, "")
			Expect(config.ResolveBaseURL()).To(Equal("http://localhost:8004"))
		})

		It("should return the environment value when set", func() {
			os.Setenv(config.ResultsAPIEnv, "http://results:9000")
			Expect(config.ResolveBaseURL()).To(Equal("http://results:9000"))
		})

		It("should return the value verbatim", func() {
			os.Setenv(config.ResultsAPIEnv, "http://results:9000/prefix/")
			Expect(config.ResolveBaseURL()).To(Equal("http://results:9000/prefix/"))
		})
	})

	Describe("Load", func() {
		Context("without a config file", func() {
			It("should use defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":4567"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.ResultsAPI.URL).To(Equal(config.DefaultResultsAPIURL))
				Expect(cfg.ResultsAPI.RelayStatus).To(BeFalse())
				Expect(cfg.HealthCheck.Path).To(Equal("/health"))
				Expect(cfg.HealthCheckInterval()).To(Equal(10 * time.Second))
				Expect(cfg.Metrics.BufferSize).To(Equal(1000))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))
			})

			It("should pick up RESULTS_API_URL", func() {
				os.Setenv(config.ResultsAPIEnv, "https://results.example.com")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.URL).To(Equal("https://results.example.com"))
			})

			It("should treat an empty RESULTS_API_URL as unset", func() {
				os.Setenv(config.ResultsAPIEnv, "")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.URL).To(Equal(config.DefaultResultsAPIURL))
			})

			It("should pick up the relay status switch", func() {
				os.Setenv("RESULTS_API_RELAY_STATUS", "true")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.RelayStatus).To(BeTrue())
			})

			It("should keep a malformed RESULTS_API_URL verbatim", func() {
				os.Setenv(config.ResultsAPIEnv, "results:8004")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.URL).To(Equal("results:8004"))
				Expect(cfg.ResultsAPI.URL).To(Equal(config.ResolveBaseURL()))
			})

			It("should keep a non-http RESULTS_API_URL verbatim", func() {
				os.Setenv(config.ResultsAPIEnv, "ftp://results:21")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.URL).To(Equal("ftp://results:21"))
			})

			It("should reject an unknown log level", func() {
				os.Setenv("LOGGING_LEVEL", "chatty")
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: "0.0.0.0:5000"
  environment: "prod"

results_api:
  url: "http://results.internal:8004"

health_check:
  interval: "30s"

logging:
  level: "debug"
`
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should load the file", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal("0.0.0.0:5000"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
				Expect(cfg.ResultsAPI.URL).To(Equal("http://results.internal:8004"))
				Expect(cfg.HealthCheckInterval()).To(Equal(30 * time.Second))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})

			It("should let RESULTS_API_URL override the file", func() {
				os.Setenv(config.ResultsAPIEnv, "http://override:1234")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.URL).To(Equal("http://override:1234"))
			})

			It("should keep the file value when RESULTS_API_URL is empty", func() {
				os.Setenv(config.ResultsAPIEnv, "")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ResultsAPI.URL).To(Equal("http://results.internal:8004"))
			})
		})

		Context("with a malformed config file", func() {
			BeforeEach(func() {
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte("server: [unterminated"), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return an error", func() {
				cfg, err := config.Load()
				Expect(err).To(HaveOccurred())
				Expect(cfg).To(BeNil())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server:      config.ServerConfig{Address: ":4567", Environment: config.EnvDev},
				ResultsAPI:  config.ResultsAPIConfig{URL: "http://localhost:8004"},
				HealthCheck: config.HealthCheckConfig{Interval: "5s", Path: "/health"},
				Metrics:     config.MetricsConfig{BufferSize: 10},
				Logging:     config.LoggingConfig{Level: config.LogLevelInfo},
			}
		})

		It("should accept a valid config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject an address without a port", func() {
			cfg.Server.Address = "localhost"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an unknown environment", func() {
			cfg.Server.Environment = "qa"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should not reject a malformed Results API URL", func() {
			cfg.ResultsAPI.URL = "http://"
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject an invalid interval", func() {
			cfg.HealthCheck.Interval = "soon"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a non-positive interval", func() {
			cfg.HealthCheck.Interval = "0s"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a relative health path", func() {
			cfg.HealthCheck.Path = "health"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero metrics buffer", func() {
			cfg.Metrics.BufferSize = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
