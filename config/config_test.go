package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/rpupo63/words-blog/errs"
)

func baseEnv() map[string]string {
	return map[string]string{
		"ADMIN_PASSWORD": "correct-horse",
		"SECRET_KEY":     "signing-key",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(baseEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite://blog.db" {
		t.Errorf("DatabaseURL = %q, want sqlite://blog.db", cfg.DatabaseURL)
	}
	if cfg.DBType != DBTypeSQLite {
		t.Errorf("DBType = %q, want %q", cfg.DBType, DBTypeSQLite)
	}
	if cfg.SessionLifetime != 31*24*time.Hour {
		t.Errorf("SessionLifetime = %v, want 744h", cfg.SessionLifetime)
	}
	if cfg.ReadTimeout != 180*time.Second {
		t.Errorf("ReadTimeout = %v, want 180s", cfg.ReadTimeout)
	}
	if cfg.SecureCookies {
		t.Error("SecureCookies should default to false")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"admin password", "ADMIN_PASSWORD"},
		{"secret key", "SECRET_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			delete(env, tt.missing)

			_, err := Load(env)
			if !errors.Is(err, errs.ErrConfigMissing) {
				t.Fatalf("Load() error = %v, want ErrConfigMissing", err)
			}
		})
	}
}

func TestLoadDBType(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		dbType  string
		want    string
		wantErr bool
	}{
		{"postgres scheme", "postgres://u:p@localhost:5432/blog", "", DBTypePostgres, false},
		{"postgresql scheme", "postgresql://localhost/blog", "", DBTypePostgres, false},
		{"sqlite scheme", "sqlite:///var/lib/blog.db", "", DBTypeSQLite, false},
		{"bare path", "blog.db", "", DBTypeSQLite, false},
		{"explicit override", "host=localhost dbname=blog", "postgres", DBTypePostgres, false},
		{"unknown scheme", "mysql://localhost/blog", "", "", true},
		{"unknown override", "blog.db", "oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env["DATABASE_URL"] = tt.url
			env["DB_TYPE"] = tt.dbType

			cfg, err := Load(env)
			if tt.wantErr {
				if !errors.Is(err, errs.ErrConfigInvalid) {
					t.Fatalf("Load() error = %v, want ErrConfigInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.DBType != tt.want {
				t.Errorf("DBType = %q, want %q", cfg.DBType, tt.want)
			}
		})
	}
}

func TestSQLitePath(t *testing.T) {
	tests := map[string]string{
		"sqlite://blog.db":          "blog.db",
		"sqlite:///var/lib/blog.db": "/var/lib/blog.db",
		"sqlite3://data/blog.db":    "data/blog.db",
		"blog.db":                   "blog.db",
	}
	for in, want := range tests {
		if got := SQLitePath(in); got != want {
			t.Errorf("SQLitePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetList(t *testing.T) {
	env := map[string]string{"ACCEPTED_ORIGINS": " https://a.example, ,https://b.example "}
	got := GetList(env, "ACCEPTED_ORIGINS")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("GetList() = %v", got)
	}
	if GetList(env, "MISSING") != nil {
		t.Error("GetList() of a missing key should be nil")
	}
}

type fakeSSM struct {
	values map[string]string
	calls  []string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(in.Name)
	f.calls = append(f.calls, name)
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("expected decryption")
	}
	v, ok := f.values[name]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestLoadSecrets(t *testing.T) {
	client := &fakeSSM{values: map[string]string{
		"/blog/SECRET_KEY":     "from-ssm",
		"/blog/ADMIN_PASSWORD": "should-not-be-used",
	}}
	env := map[string]string{"ADMIN_PASSWORD": "from-env"}

	if err := LoadSecrets(context.Background(), client, "/blog/", env); err != nil {
		t.Fatalf("LoadSecrets() error = %v", err)
	}

	if env["SECRET_KEY"] != "from-ssm" {
		t.Errorf("SECRET_KEY = %q, want from-ssm", env["SECRET_KEY"])
	}
	if env["ADMIN_PASSWORD"] != "from-env" {
		t.Errorf("ADMIN_PASSWORD = %q, environment value should win", env["ADMIN_PASSWORD"])
	}
	if _, ok := env["DATABASE_URL"]; ok {
		t.Error("DATABASE_URL should stay unset when the parameter does not exist")
	}
	for _, call := range client.calls {
		if call == "/blog/ADMIN_PASSWORD" {
			t.Error("SSM should not be queried for keys already in the environment")
		}
	}
}
