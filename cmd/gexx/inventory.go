package main

import (
	"fmt"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"

	"github.com/gexx/gexx/internal/database"
	"github.com/gexx/gexx/internal/database/repository"
	"github.com/gexx/gexx/internal/datatable"
	"github.com/gexx/gexx/internal/service"
	"github.com/gexx/gexx/internal/testdata"
)

var (
	seedCommand     = app.Command("seed", "Add inventory to a user's team.")
	seedSample      = seedCommand.Command("sample", "Add the ten sample items.")
	seedSampleEmail = seedSample.Flag("email", "Account to seed.").Required().String()
	seedRandom      = seedCommand.Command("random", "Add generated items.")
	seedRandomEmail = seedRandom.Flag("email", "Account to seed.").Required().String()
	seedCount       = seedRandom.Flag("count", "Number of items.").Default("500").Int()
	seedValue       = seedRandom.Flag("seed", "Random seed.").Default("1").Int64()

	importCommand = app.Command("import", "Import items from a CSV file.")
	importEmail   = importCommand.Flag("email", "Account to import into.").Required().String()
	importFile    = importCommand.Arg("file", "CSV with sku,title,category,quantity,price columns.").Required().ExistingFile()

	exportCommand  = app.Command("export", "Export inventory to an XLSX workbook.")
	exportEmail    = exportCommand.Flag("email", "Account to export.").Required().String()
	exportOut      = exportCommand.Flag("out", "Output file.").Short('o').Default("inventory.xlsx").String()
	exportSort     = exportCommand.Flag("sort", "Sort key column:asc|desc; repeatable.").Strings()
	exportCategory = exportCommand.Flag("category", "Only these categories; repeatable.").Strings()
	exportStock    = exportCommand.Flag("stock", "Only these stock states; repeatable.").Enums(
		string(service.InStock), string(service.LowStock), string(service.OutOfStock))

	categoryCommand   = app.Command("category", "Manage a team's extra categories.")
	categoryAdd       = categoryCommand.Command("add", "Add a category.")
	categoryEmail     = categoryAdd.Flag("email", "Account whose team gets the category.").Required().String()
	categoryName      = categoryAdd.Arg("name", "Category name.").Required().String()
	categoryList      = categoryCommand.Command("list", "List the categories a team can use.")
	categoryListEmail = categoryList.Flag("email", "Account to list.").Required().String()

	userCommand     = app.Command("user", "Manage users.")
	userDelete      = userCommand.Command("delete", "Delete a user and their memberships.")
	userDeleteEmail = userDelete.Arg("email", "Email of the user.").Required().String()
)

func doSeed(command string) {
	e := openEnv()
	defer e.Close()

	switch command {
	case seedSample.FullCommand():
		acct := e.accountFor(*seedSampleEmail)
		kingpin.FatalIfError(database.SeedDefaults(e.ctx, e.db, acct.Team.TeamID), "seed")
		fmt.Printf("sample inventory added to %s\n", acct.Team.TeamName)
	case seedRandom.FullCommand():
		acct := e.accountFor(*seedRandomEmail)
		err := testdata.Seed(e.ctx, repository.NewItemRepo(e.db), acct.Team.TeamID, *seedCount, *seedValue)
		kingpin.FatalIfError(err, "seed")
		fmt.Printf("%d items added to %s\n", *seedCount, acct.Team.TeamName)
	}
}

func doImport() {
	e := openEnv()
	defer e.Close()

	acct := e.accountFor(*importEmail)
	f, err := os.Open(*importFile)
	kingpin.FatalIfError(err, "open")
	defer f.Close()

	res, err := e.ingest.ImportCSV(e.ctx, acct.Team.TeamID, f)
	kingpin.FatalIfError(err, "import")
	fmt.Printf("imported %d, skipped %d, errors %d\n", res.Imported, res.Skipped, len(res.Errors))
	for _, err := range res.Errors {
		fmt.Fprintln(os.Stderr, err)
	}
}

func doExport() {
	e := openEnv()
	defer e.Close()

	acct := e.accountFor(*exportEmail)
	rows, err := e.inventory.List(e.ctx, acct.Team.TeamID)
	kingpin.FatalIfError(err, "list")
	table, err := service.NewTable(rows, e.cfg.Table.PageSize)
	kingpin.FatalIfError(err, "table")

	var keys []datatable.SortKey
	for _, raw := range *exportSort {
		k, err := datatable.ParseSortKey(raw)
		kingpin.FatalIfError(err, "sort")
		keys = append(keys, k)
	}
	table.SetSorting(keys)
	table.SetColumnFilter("category", datatable.OneOf(*exportCategory...))
	table.SetColumnFilter("status", datatable.OneOf(*exportStock...))

	f, err := os.Create(*exportOut)
	kingpin.FatalIfError(err, "create")
	n, err := service.ExportService{}.WriteXLSX(f, table)
	kingpin.FatalIfError(err, "export")
	kingpin.FatalIfError(f.Close(), "close")
	fmt.Printf("%d rows written to %s\n", n, *exportOut)
}

func doCategory(command string) {
	e := openEnv()
	defer e.Close()

	switch command {
	case categoryAdd.FullCommand():
		acct := e.accountFor(*categoryEmail)
		kingpin.FatalIfError(e.prefs.AddCategory(acct.Team.TeamID, *categoryName), "add category")
		fmt.Printf("category %q added to %s\n", *categoryName, acct.Team.TeamName)
	case categoryList.FullCommand():
		acct := e.accountFor(*categoryListEmail)
		for _, c := range e.inventory.KnownCategories(acct.Team.TeamID) {
			fmt.Println(c)
		}
	}
}

func doUserDelete() {
	e := openEnv()
	defer e.Close()

	ok, err := e.auth.DeleteUserByEmail(e.ctx, *userDeleteEmail)
	kingpin.FatalIfError(err, "delete user")
	if !ok {
		kingpin.Fatalf("no user with email %s", *userDeleteEmail)
	}
	fmt.Printf("user %s deleted\n", *userDeleteEmail)
}

func init() {
	commandHandlers = append(commandHandlers, func(command string) bool {
		switch command {
		case seedSample.FullCommand(), seedRandom.FullCommand():
			doSeed(command)
		case importCommand.FullCommand():
			doImport()
		case exportCommand.FullCommand():
			doExport()
		case categoryAdd.FullCommand(), categoryList.FullCommand():
			doCategory(command)
		case userDelete.FullCommand():
			doUserDelete()
		default:
			return false
		}
		return true
	})
}
