package main

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookhub/internal/catalog"
	"bookhub/internal/scraper"
	"bookhub/pkg/database"
	"bookhub/pkg/models"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	decimal.MarshalJSONWithoutQuotes = true
}

type seedProduct struct {
	title  string
	author string
	price  string
	image  string
	desc   string
	rating float64
	review string
	by     string
}

var seedCategories = map[string][]string{
	"Fiction Books":     {"Crime & Thriller", "Science Fiction", "Historical Fiction"},
	"Non-Fiction Books": {"Biography", "History", "Science & Nature"},
	"Children's Books":  {"Picture Books", "Young Adult"},
	"Academic":          {"Textbooks", "Study Guides"},
	"Romance":           {"Contemporary Romance", "Historical Romance"},
}

var seedProducts = map[string][]seedProduct{
	"crime-thriller": {
		{
			title:  "The Silent Patient",
			author: "Alex Michaelides",
			price:  "4.99",
			image:  "https://images.worldofbooks.com/silent-patient.jpg",
			desc:   "Alicia Berenson's life is seemingly perfect. A famous painter married to an in-demand fashion photographer, she lives in a grand house overlooking a park in one of London's most desirable areas. One evening her husband Gabriel returns home late, and Alicia shoots him five times in the face, and then never speaks another word.",
			rating: 4.5,
			review: "Gripping from the first page. The twist genuinely caught me off guard.",
			by:     "Priya K.",
		},
		{
			title:  "Gone Girl",
			author: "Gillian Flynn",
			price:  "3.50",
			image:  "https://images.worldofbooks.com/gone-girl.jpg",
			desc:   "On a warm summer morning in North Carthage, Missouri, it is Nick and Amy Dunne's fifth wedding anniversary. Presents are being wrapped and reservations are being made when Nick's clever and beautiful wife disappears.",
			rating: 4,
			review: "Dark, clever and impossible to put down.",
			by:     "Tom W.",
		},
	},
	"science-fiction": {
		{
			title:  "Dune",
			author: "Frank Herbert",
			price:  "5.99",
			image:  "https://images.worldofbooks.com/dune.jpg",
			desc:   "Set on the desert planet Arrakis, Dune is the story of the boy Paul Atreides, heir to a noble family tasked with ruling an inhospitable world where the only thing of value is the spice melange, a drug capable of extending life and enhancing consciousness.",
			rating: 5,
			review: "The greatest science fiction novel ever written. Worldbuilding without equal.",
			by:     "Arun M.",
		},
	},
	"biography": {
		{
			title:  "Educated",
			author: "Tara Westover",
			price:  "4.25",
			image:  "https://images.worldofbooks.com/educated.jpg",
			desc:   "Born to survivalists in the mountains of Idaho, Tara Westover was seventeen the first time she set foot in a classroom. Her family was so isolated from mainstream society that there was no one to ensure the children received an education.",
			rating: 4.5,
			review: "An extraordinary memoir about the power of education.",
			by:     "Sita G.",
		},
	},
	"picture-books": {
		{
			title:  "The Very Hungry Caterpillar",
			author: "Eric Carle",
			price:  "2.99",
			image:  "https://images.worldofbooks.com/hungry-caterpillar.jpg",
			desc:   "The all-time classic picture book, from generation to generation, sold somewhere in the world every 30 seconds. A sturdy and beautiful book to give as a gift for new babies, baby showers, birthdays, and other new beginnings.",
			rating: 5,
			review: "My daughter asks for this one every night.",
			by:     "Helen B.",
		},
	},
	"contemporary-romance": {
		{
			title:  "Beach Read",
			author: "Emily Henry",
			price:  "3.99",
			image:  "https://images.worldofbooks.com/beach-read.jpg",
			desc:   "Augustus Everett is an acclaimed author of literary fiction. January Andrews writes bestselling romance. When she pens a happily ever after, he kills off his entire cast. They're polar opposites. In fact, the only thing they have in common is that for the next three months, they're living in neighboring beach houses.",
			rating: 4,
			review: "Funny, warm and surprisingly moving.",
			by:     "Dana R.",
		},
	},
}

func main() {
	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := catalog.NewRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	nav, err := repo.UpsertNavigation(ctx, "Books", "books", now)
	if err != nil {
		log.Fatalf("seed navigation: %v", err)
	}

	for parentTitle, children := range seedCategories {
		parent, err := repo.UpsertCategory(ctx, &models.Category{
			NavigationID:  nav.ID,
			Title:         parentTitle,
			Slug:          scraper.Slugify(parentTitle),
			LastScrapedAt: now,
		})
		if err != nil {
			log.Fatalf("seed category %q: %v", parentTitle, err)
		}

		for _, childTitle := range children {
			child, err := repo.UpsertCategory(ctx, &models.Category{
				NavigationID:  nav.ID,
				ParentID:      &parent.ID,
				Title:         childTitle,
				Slug:          scraper.Slugify(childTitle),
				LastScrapedAt: now,
			})
			if err != nil {
				log.Fatalf("seed category %q: %v", childTitle, err)
			}
			seedCategoryProducts(ctx, repo, child, now)
		}
	}

	log.Info("demo seed complete")
}

func seedCategoryProducts(ctx context.Context, repo *catalog.Repo, cat *models.Category, now time.Time) {
	for _, sp := range seedProducts[cat.Slug] {
		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			log.Fatalf("seed price %q: %v", sp.price, err)
		}

		sourceID := "seed-" + scraper.Slugify(sp.title)
		saved, err := repo.UpsertProduct(ctx, &models.Product{
			CategoryID:    cat.ID,
			SourceID:      sourceID,
			SourceURL:     "https://www.worldofbooks.com/products/" + sourceID,
			Title:         sp.title,
			Author:        sp.author,
			Price:         price,
			Currency:      "GBP",
			ImageURL:      sp.image,
			LastScrapedAt: now,
		})
		if err != nil {
			log.Fatalf("seed product %q: %v", sp.title, err)
		}

		specs := models.SpecMap{
			"Author":                  models.ScalarSpec(sp.author),
			"Condition":               models.ScalarSpec("Very Good"),
			"Binding":                 models.ScalarSpec("Paperback"),
			models.RecommendationsKey: models.RecommendationSpec(nil),
		}
		if err := repo.UpsertProductDetail(ctx, &models.ProductDetail{
			ProductID:    saved.ID,
			Description:  sp.desc,
			Specs:        specs,
			RatingsAvg:   sp.rating,
			ReviewsCount: 1,
		}); err != nil {
			log.Fatalf("seed detail %q: %v", sp.title, err)
		}

		if _, err := repo.InsertReview(ctx, &models.Review{
			ProductID: saved.ID,
			Author:    sp.by,
			Rating:    sp.rating,
			Text:      sp.review,
			CreatedAt: now,
		}); err != nil {
			log.Fatalf("seed review %q: %v", sp.title, err)
		}
	}
}
