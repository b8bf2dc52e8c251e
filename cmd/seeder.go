package cmd

import (
	"fmt"
	"log"
	"strings"

	complaintDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/complaint"
	departmentDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/civic-complaints/internal/core/datamodel/user"
	"github.com/frahmantamala/civic-complaints/internal/department"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the department catalog and sample accounts",
	Long:  `Seed the departments table from the fixed catalog and create an admin account plus one staff account per department for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, gdb, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			for _, model := range []interface{}{
				&complaintDatamodel.Complaint{},
				&userDatamodel.User{},
				&departmentDatamodel.Department{},
			} {
				if err := gdb.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					log.Fatalf("failed to clear table: %v", err)
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		for _, name := range department.All() {
			dept := departmentDatamodel.Department{
				Name:     name,
				Email:    staffEmail(name),
				Phone:    "1800-000-000",
				Address:  "City Hall",
				IsActive: true,
			}
			if err := gdb.Where("name = ?", name).FirstOrCreate(&dept).Error; err != nil {
				log.Fatalf("failed to seed department %s: %v", name, err)
			}
		}
		fmt.Printf("Seeded %d departments\n", department.Count())

		admin := userDatamodel.User{
			Name:         "City Administrator",
			Email:        "admin@city.gov",
			PasswordHash: string(hash),
			Role:         "admin",
			IsActive:     true,
		}
		if err := gdb.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		fmt.Println("Seeded admin user:", admin.Email)

		for _, name := range department.All() {
			deptName := name
			staff := userDatamodel.User{
				Name:         name + " Staff",
				Email:        staffEmail(name),
				PasswordHash: string(hash),
				Role:         "department",
				Department:   &deptName,
				IsActive:     true,
			}
			if err := gdb.Where("email = ?", staff.Email).FirstOrCreate(&staff).Error; err != nil {
				log.Fatalf("failed to seed staff for %s: %v", name, err)
			}
		}
		fmt.Printf("Seeded %d department staff accounts\n", department.Count())
	},
}

// staffEmail derives a stable address from a catalog name, e.g.
// "Public Works Department" becomes "public.works@city.gov".
func staffEmail(deptName string) string {
	name := strings.TrimSuffix(deptName, " Department")
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", ".")
	return name + "@city.gov"
}
