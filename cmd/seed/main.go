package main

import (
	"log"

	"github.com/shopspring/decimal"

	"course-market/internal/config"
	"course-market/internal/database"
	"course-market/internal/models"
)

var sampleCourses = []models.Course{
	{
		Title:       "Complete Web Design: from Figma to Webflow to Freelancing",
		Description: "3 in 1 Course: Learn to design websites with Figma, build with Webflow, and make a living freelancing.",
		Author:      "Vako Shvili",
		Price:       decimal.NewFromFloat(14.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/3456481_cb90.jpg",
		Category:    "Web Design",
	},
	{
		Title:       "The Complete JavaScript Course 2024: From Zero to Expert",
		Description: "The modern JavaScript course for everyone! Master JavaScript with projects, challenges and theory.",
		Author:      "Jonas Schmedtmann",
		Price:       decimal.NewFromFloat(89.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/851712_fc61_5.jpg",
		Category:    "Programming",
	},
	{
		Title:       "React - The Complete Guide 2024",
		Description: "Dive in and learn React.js from scratch! Learn React, Hooks, Redux, React Router, Next.js, Best Practices and way more!",
		Author:      "Maximilian Schwarzmüller",
		Price:       decimal.NewFromFloat(94.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/1362070_b9a1_2.jpg",
		Category:    "Web Development",
	},
	{
		Title:       "Python for Data Science and Machine Learning Bootcamp",
		Description: "Learn how to use NumPy, Pandas, Seaborn, Matplotlib, Plotly, Scikit-Learn, Machine Learning, Tensorflow, and more!",
		Author:      "Jose Portilla",
		Price:       decimal.NewFromFloat(119.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/903744_8eb2.jpg",
		Category:    "Data Science",
	},
	{
		Title:       "The Complete Node.js Developer Course",
		Description: "Learn Node.js by building real-world applications with Node, Express, MongoDB, Jest, and more!",
		Author:      "Andrew Mead",
		Price:       decimal.NewFromFloat(99.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/922484_52a1_8.jpg",
		Category:    "Backend Development",
	},
	{
		Title:       "Angular - The Complete Guide",
		Description: "Master Angular and build awesome, reactive web apps with the successor of Angular.js",
		Author:      "Maximilian Schwarzmüller",
		Price:       decimal.NewFromFloat(89.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/756150_c033_2.jpg",
		Category:    "Web Development",
	},
	{
		Title:       "iOS & Swift - The Complete iOS App Development Bootcamp",
		Description: "From Beginner to iOS App Developer with Just One Course! Fully Updated with a Comprehensive Module Dedicated to SwiftUI!",
		Author:      "Dr. Angela Yu",
		Price:       decimal.NewFromFloat(109.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/1778502_f4b9_12.jpg",
		Category:    "Mobile Development",
	},
	{
		Title:       "The Complete Digital Marketing Course",
		Description: "12 Courses in 1: SEO, YouTube, Facebook, Instagram, Google Ads, TikTok, LinkedIn, Email, WordPress, Analytics & AI",
		Author:      "Rob Percival",
		Price:       decimal.NewFromFloat(79.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/1400338_7aa8_3.jpg",
		Category:    "Marketing",
	},
	{
		Title:       "The Complete 2024 Web Development Bootcamp",
		Description: "Become a Full-Stack Web Developer with just ONE course. HTML, CSS, Javascript, Node, React, PostgreSQL, Web3 and DApps",
		Author:      "Dr. Angela Yu",
		Price:       decimal.NewFromFloat(99.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/1565838_e54e_18.jpg",
		Category:    "Web Development",
	},
	{
		Title:       "Machine Learning A-Z: AI, Python & R",
		Description: "Learn to create Machine Learning Algorithms in Python and R from two Data Science experts.",
		Author:      "Kirill Eremenko",
		Price:       decimal.NewFromFloat(84.99),
		ImageURL:    "https://img-c.udemycdn.com/course/480x270/950390_270f_3.jpg",
		Category:    "Data Science",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	seeded := 0
	for _, course := range sampleCourses {
		var existing models.Course
		if err := db.Where("title = ?", course.Title).First(&existing).Error; err == nil {
			continue
		}

		course.IsActive = true
		if err := db.Create(&course).Error; err != nil {
			log.Fatalf("Failed to seed course %q: %v", course.Title, err)
		}
		seeded++
	}

	log.Printf("✅ Seeded %d courses", seeded)
}
