// Usage: MODELMAGIC_CONFIG=${PWD}/etc/config.yaml go run hack/export_projects.go
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/modelmagic/modelmagic/dao/model"
	"github.com/modelmagic/modelmagic/dao/query"
)

func main() {
	db := query.GetDB()

	// Include deleted projects for a full billing history.
	var projects []model.Project
	if err := db.Preload("AssignedEditor").Unscoped().Order("id DESC").Find(&projects).Error; err != nil {
		panic(fmt.Errorf("failed to fetch projects: %w", err))
	}

	file, err := os.Create("projects_export.csv")
	if err != nil {
		panic(fmt.Errorf("failed to create CSV file: %w", err))
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{
		"id", "name", "status", "package", "quantity", "total_cost",
		"client_email", "editor", "priority", "created_at", "delivery_date",
	}
	if err := w.Write(header); err != nil {
		panic(fmt.Errorf("failed to write CSV header: %w", err))
	}

	for i := range projects {
		p := &projects[i]
		editor := ""
		if p.AssignedEditor != nil {
			editor = p.AssignedEditor.Name
		}
		delivery := ""
		if p.DeliveryDate != nil {
			delivery = p.DeliveryDate.Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			string(p.Status),
			string(p.PackageType),
			strconv.Itoa(p.ItemQuantity),
			strconv.FormatFloat(p.TotalCost, 'f', 2, 64),
			strings.ToLower(p.ClientEmail),
			editor,
			string(p.Priority),
			p.CreatedAt.Format(time.RFC3339),
			delivery,
		}
		if err := w.Write(row); err != nil {
			panic(fmt.Errorf("failed to write CSV row: %w", err))
		}
	}

	fmt.Printf("exported %d projects to projects_export.csv\n", len(projects))
}
