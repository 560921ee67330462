package config

import (
	"encoding/json"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/smartlands/landregistry/pkg/types"
)

type (
	Config struct {
		Production bool      `json:"production" env:"PRODUCTION" envDefault:"false"`
		PrettyLogs bool      `json:"pretty_logs" env:"PRETTY_LOGS" envDefault:"false"`
		LogLevel   string    `json:"log_level" env:"LOG_LEVEL" envDefault:"info"`
		Server     Server    `json:"server" envPrefix:"SERVER_"`
		MongoDB    MongoDB   `json:"mongodb" envPrefix:"MONGODB_"`
		Ledger     Ledger    `json:"ledger" envPrefix:"LEDGER_"`
		Documents  Documents `json:"documents" envPrefix:"DOCUMENTS_"`
		State      State     `json:"state" envPrefix:"STATE_"`
		Admin      Admin     `json:"admin" envPrefix:"ADMIN_"`
		Reconcile  Reconcile `json:"reconcile" envPrefix:"RECONCILE_"`
	}

	Server struct {
		Address string `json:"address" env:"ADDRESS" envDefault:"0.0.0.0:8001"`
	}

	MongoDB struct {
		URI          string `json:"uri" env:"URI"`
		DatabaseName string `json:"database_name" env:"DATABASE_NAME" envDefault:"smartlands"`
	}

	Ledger struct {
		RPCURL          string                   `json:"rpc_url" env:"RPC_URL"`
		ContractAddress string                   `json:"contract_address" env:"CONTRACT_ADDRESS"`
		PrivateKey      string                   `json:"private_key" env:"PRIVATE_KEY"`
		ConfirmTimeout  types.MarshalledDuration `json:"confirm_timeout" env:"CONFIRM_TIMEOUT" envDefault:"2m"`
	}

	Documents struct {
		PinataBaseURL   string `json:"pinata_base_url" env:"PINATA_BASE_URL" envDefault:"https://api.pinata.cloud"`
		PinataAPIKey    string `json:"pinata_api_key" env:"PINATA_API_KEY"`
		PinataSecretKey string `json:"pinata_secret_key" env:"PINATA_SECRET_KEY"`
	}

	State struct {
		Path string `json:"path" env:"PATH" envDefault:"state.db"`
	}

	Admin struct {
		// WalletAddress is the statically designated administrator account,
		// checked before the user store's role field.
		WalletAddress string `json:"wallet_address" env:"WALLET_ADDRESS"`
	}

	Reconcile struct {
		RunAtStartup bool                     `json:"run_at_startup" env:"RUN_AT_STARTUP" envDefault:"true"`
		ScanInterval types.MarshalledDuration `json:"scan_interval" env:"SCAN_INTERVAL" envDefault:"5m"`
		ScanTimeout  types.MarshalledDuration `json:"scan_timeout" env:"SCAN_TIMEOUT" envDefault:"2m"`
		// AbandonAfter is how long an unconfirmed registration stays in the
		// journal before it is dropped and left for the admin to retry.
		AbandonAfter types.MarshalledDuration `json:"abandon_after" env:"ABANDON_AFTER" envDefault:"24h"`
	}
)

func Load() (Config, error) {
	var conf Config

	// Try to load JSON config file, but fallback to environment variables if it does not exist
	if _, err := os.Stat("config.json"); err == nil {
		bytes, err := os.ReadFile("config.json")
		if err != nil {
			return Config{}, err
		}

		if err := json.Unmarshal(bytes, &conf); err != nil {
			return Config{}, err
		}

		return conf, nil
	}

	if err := env.Parse(&conf); err != nil {
		return Config{}, err
	}

	return conf, nil
}
