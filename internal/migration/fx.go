// Package migration keeps the database schema in sync at startup.
package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	invoicedomain "github.com/cobrato/cobrato/internal/invoice/domain"
	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
	orgdomain "github.com/cobrato/cobrato/internal/organization/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return conn.AutoMigrate(
			&orgdomain.Organization{},
			&customerdomain.Customer{},
			&ruledomain.CollectionRule{},
			&invoicedomain.Invoice{},
			&messagingdomain.MessagingSetting{},
			&messagingdomain.MessageHistory{},
		)
	}),
)
