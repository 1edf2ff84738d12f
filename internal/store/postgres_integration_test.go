// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wardenhq/warden/internal/store"
)

func startPostgres(ctx context.Context) (string, func()) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("warden_test"),
		postgres.WithUsername("warden"),
		postgres.WithPassword("warden"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	return connStr, func() { _ = container.Terminate(ctx) }
}

var _ = Describe("PostgreSQL store", func() {
	var (
		ctx      context.Context
		connStr  string
		teardown func()
	)

	BeforeEach(func() {
		ctx = context.Background()
		connStr, teardown = startPostgres(ctx)
	})

	AfterEach(func() {
		teardown()
	})

	Describe("Connect", func() {
		It("returns a pool that answers pings", func() {
			pool, err := store.Connect(ctx, connStr, store.WithAttempts(3))
			Expect(err).NotTo(HaveOccurred())
			defer pool.Close()

			Expect(pool.Ping(ctx)).To(Succeed())
		})
	})

	Describe("Migrator", func() {
		It("walks the full migration cycle", func() {
			migrator, err := store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = migrator.Close() }()

			version, dirty, err := migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(BeZero())
			Expect(dirty).To(BeFalse())

			pending, err := migrator.PendingMigrations()
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(Equal([]uint{1, 2}))

			Expect(migrator.Up()).To(Succeed())
			version, _, err = migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(uint(2)))

			Expect(migrator.Steps(-1)).To(Succeed())
			version, _, err = migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(uint(1)))

			Expect(migrator.Up()).To(Succeed())
			Expect(migrator.Down()).To(Succeed())
			version, _, err = migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(BeZero())
		})

		It("creates the identities table", func() {
			migrator, err := store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			defer func() { _ = migrator.Close() }()
			Expect(migrator.Up()).To(Succeed())

			pool, err := store.Connect(ctx, connStr)
			Expect(err).NotTo(HaveOccurred())
			defer pool.Close()

			var exists bool
			err = pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'identities')`,
			).Scan(&exists)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})
	})
})
