// Package seed provisions the sample accounts and schedule used for local
// development and demos.
package seed

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborline/shipline-backend/internal/users"
	"github.com/harborline/shipline-backend/internal/vessels"
	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/db/models"
	"github.com/harborline/shipline-backend/pkg/enums"
	"github.com/harborline/shipline-backend/pkg/security"
)

// Account is a sample login.
type Account struct {
	Identity string
	Password string
	Role     enums.Role
}

var Accounts = []Account{
	{Identity: "admin", Password: "AdminPass123!", Role: enums.RoleAdmin},
	{Identity: "operator1", Password: "OperatorPass123!", Role: enums.RoleUser},
	{Identity: "manager", Password: "ManagerPass123!", Role: enums.RoleUser},
}

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

var Vessels = []models.Vessel{
	{VesselName: "MSC DIANA", VoyageNo: "DIA001E", Country: "Panama", PortName: "Port of Hamburg", ETA: at("2024-01-15T08:00:00Z"), ETD: at("2024-01-17T18:00:00Z")},
	{VesselName: "MAERSK ESSEX", VoyageNo: "ESX234W", Country: "Denmark", PortName: "Port of Rotterdam", ETA: at("2024-01-20T06:30:00Z"), ETD: at("2024-01-22T14:00:00Z")},
	{VesselName: "COSCO SHANGHAI", VoyageNo: "CSH089N", Country: "China", PortName: "Port of Felixstowe", ETA: at("2024-01-25T12:00:00Z"), ETD: at("2024-01-28T09:30:00Z")},
	{VesselName: "CMA CGM ANTOINE DE SAINT EXUPERY", VoyageNo: "ASE445S", Country: "France", PortName: "Port of Southampton", ETA: at("2024-02-01T10:15:00Z"), ETD: at("2024-02-03T16:45:00Z")},
	{VesselName: "EVERGREEN EVER ACE", VoyageNo: "ACE567E", Country: "Taiwan", PortName: "Port of London", ETA: at("2024-02-05T07:00:00Z"), ETD: at("2024-02-07T19:30:00Z")},
	{VesselName: "HAPAG LLOYD BERLIN EXPRESS", VoyageNo: "BER789W", Country: "Germany", PortName: "Port of Liverpool", ETA: at("2024-02-10T11:30:00Z"), ETD: at("2024-02-12T15:00:00Z")},
	{VesselName: "ONE STORK", VoyageNo: "STK123N", Country: "Japan", PortName: "Port of Bristol", ETA: at("2024-02-15T09:45:00Z"), ETD: at("2024-02-17T13:15:00Z")},
	{VesselName: "YANG MING EXCELLENCE", VoyageNo: "EXC456S", Country: "Taiwan", PortName: "Port of Newcastle", ETA: at("2024-02-20T14:20:00Z"), ETD: at("2024-02-22T20:00:00Z")},
	{VesselName: "ZIM KINGSTON", VoyageNo: "KIN789E", Country: "Israel", PortName: "Port of Hull", ETA: at("2024-02-25T08:30:00Z"), ETD: at("2024-02-27T17:45:00Z")},
	{VesselName: "HYUNDAI BRAVE", VoyageNo: "BRV321W", Country: "South Korea", PortName: "Port of Glasgow", ETA: at("2024-03-01T06:00:00Z"), ETD: at("2024-03-03T12:30:00Z")},
}

// Options controls a seeding run.
type Options struct {
	// Reset deletes every existing user and vessel first.
	Reset    bool
	Password config.PasswordConfig
}

// Result counts the rows written by a run and the totals stored afterwards.
type Result struct {
	Users   int64
	Vessels int64

	TotalUsers   int64
	TotalVessels int64
}

// Run writes the sample data in one transaction. Rows that already exist are
// left alone unless Reset is set.
func Run(ctx context.Context, conn *gorm.DB, opts Options) (Result, error) {
	var res Result

	hashes := make([]string, len(Accounts))
	for i, acct := range Accounts {
		hash, err := security.HashPassword(acct.Password, opts.Password)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", acct.Identity, err)
		}
		hashes[i] = hash
	}

	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Reset {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
				return fmt.Errorf("clear users: %w", err)
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Vessel{}).Error; err != nil {
				return fmt.Errorf("clear vessels: %w", err)
			}
		}

		for i, acct := range Accounts {
			user := models.User{Identity: acct.Identity, PasswordHash: hashes[i], Role: acct.Role}
			out := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
			if out.Error != nil {
				return fmt.Errorf("create user %s: %w", acct.Identity, out.Error)
			}
			res.Users += out.RowsAffected
		}

		for _, sample := range Vessels {
			vessel := sample
			out := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vessel)
			if out.Error != nil {
				return fmt.Errorf("create vessel %s/%s: %w", sample.VesselName, sample.VoyageNo, out.Error)
			}
			res.Vessels += out.RowsAffected
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	if res.TotalUsers, err = users.NewRepository(conn).Count(ctx); err != nil {
		return res, fmt.Errorf("count users: %w", err)
	}
	if res.TotalVessels, err = vessels.NewRepository(conn).Count(ctx); err != nil {
		return res, fmt.Errorf("count vessels: %w", err)
	}
	return res, nil
}
