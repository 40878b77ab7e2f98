package startup

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/Jhojannt/mapping-repo/config"
	"github.com/Jhojannt/mapping-repo/pkg/database"
	"github.com/Jhojannt/mapping-repo/pkg/kafka"
)

// DatabaseDependency opens the PostgreSQL pool and runs pending migrations.
type DatabaseDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	DB     database.DB
}

func NewDatabaseDependency(cfg *config.Config, logger ectologger.Logger) *DatabaseDependency {
	return &DatabaseDependency{cfg: cfg, logger: logger}
}

func (d *DatabaseDependency) GetName() string {
	return "database"
}

func (d *DatabaseDependency) Start(ctx context.Context) error {
	db, err := database.Connect(ctx, d.logger, database.ConnectionConfig{
		Driver:          d.cfg.DatabaseDriver,
		Host:            d.cfg.DatabaseHost,
		Port:            d.cfg.DatabasePort,
		UserName:        d.cfg.DatabaseUserName,
		Password:        d.cfg.DatabasePassword,
		Name:            d.cfg.DatabaseName,
		SSLMode:         d.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	d.DB = db

	instance, ok := db.(*database.DatabaseInstance)
	if !ok {
		return nil
	}

	driver, err := postgres.WithInstance(instance.DB.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		Force:               d.cfg.DatabaseMigrationForce,
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	return migrations.Migrate(d.cfg.DatabaseName, driver)
}

func (d *DatabaseDependency) Stop(ctx context.Context) error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// KafkaDependency builds the event producer when eventing is enabled.
type KafkaDependency struct {
	cfg      *config.Config
	logger   ectologger.Logger
	Producer *kafka.Producer
}

func NewKafkaDependency(cfg *config.Config, logger ectologger.Logger) *KafkaDependency {
	return &KafkaDependency{cfg: cfg, logger: logger}
}

func (k *KafkaDependency) GetName() string {
	return "kafka"
}

func (k *KafkaDependency) Start(ctx context.Context) error {
	if !k.cfg.KafkaEnabled {
		k.logger.WithContext(ctx).Info("Kafka eventing disabled")
		return nil
	}

	k.Producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      k.cfg.KafkaBrokers,
		Topic:        k.cfg.KafkaOutputTopic,
		BatchSize:    k.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(k.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: k.cfg.KafkaRequiredAcks,
		Compression:  k.cfg.KafkaCompression,
	}, k.logger)
	return nil
}

func (k *KafkaDependency) Stop(ctx context.Context) error {
	if k.Producer == nil {
		return nil
	}
	return k.Producer.Close()
}
