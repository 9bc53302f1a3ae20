package main

import "github.com/nblkmal/nutrition-hub/pkg/storage"

// seedFoods is the baseline dataset written by the seed command. All values
// are per 100g, matching the serving basis used for provider results.
// Sources: USDA FoodData Central, rounded to one decimal.
var seedFoods = []storage.Food{
	{Name: "chicken breast", Calories: 165, ProteinG: 31, CarbohydratesTotalG: 0, FatTotalG: 3.6, FatSaturatedG: 1, FiberG: 0, SugarG: 0, SodiumMg: 74, PotassiumMg: 256, CholesterolMg: 85},
	{Name: "white rice", Calories: 130, ProteinG: 2.7, CarbohydratesTotalG: 28, FatTotalG: 0.3, FatSaturatedG: 0.1, FiberG: 0.4, SugarG: 0.1, SodiumMg: 1, PotassiumMg: 35, CholesterolMg: 0},
	{Name: "brown rice", Calories: 112, ProteinG: 2.3, CarbohydratesTotalG: 23.5, FatTotalG: 0.8, FatSaturatedG: 0.2, FiberG: 1.8, SugarG: 0.4, SodiumMg: 5, PotassiumMg: 43, CholesterolMg: 0},
	{Name: "egg", Calories: 155, ProteinG: 13, CarbohydratesTotalG: 1.1, FatTotalG: 11, FatSaturatedG: 3.3, FiberG: 0, SugarG: 1.1, SodiumMg: 124, PotassiumMg: 126, CholesterolMg: 373},
	{Name: "banana", Calories: 89, ProteinG: 1.1, CarbohydratesTotalG: 22.8, FatTotalG: 0.3, FatSaturatedG: 0.1, FiberG: 2.6, SugarG: 12.2, SodiumMg: 1, PotassiumMg: 358, CholesterolMg: 0},
	{Name: "apple", Calories: 52, ProteinG: 0.3, CarbohydratesTotalG: 13.8, FatTotalG: 0.2, FatSaturatedG: 0, FiberG: 2.4, SugarG: 10.4, SodiumMg: 1, PotassiumMg: 107, CholesterolMg: 0},
	{Name: "broccoli", Calories: 34, ProteinG: 2.8, CarbohydratesTotalG: 6.6, FatTotalG: 0.4, FatSaturatedG: 0, FiberG: 2.6, SugarG: 1.7, SodiumMg: 33, PotassiumMg: 316, CholesterolMg: 0},
	{Name: "salmon", Calories: 208, ProteinG: 20, CarbohydratesTotalG: 0, FatTotalG: 13, FatSaturatedG: 3.1, FiberG: 0, SugarG: 0, SodiumMg: 59, PotassiumMg: 363, CholesterolMg: 55},
	{Name: "oatmeal", Calories: 71, ProteinG: 2.5, CarbohydratesTotalG: 12, FatTotalG: 1.5, FatSaturatedG: 0.2, FiberG: 1.7, SugarG: 0.3, SodiumMg: 4, PotassiumMg: 70, CholesterolMg: 0},
	{Name: "almonds", Calories: 579, ProteinG: 21.2, CarbohydratesTotalG: 21.6, FatTotalG: 49.9, FatSaturatedG: 3.8, FiberG: 12.5, SugarG: 4.4, SodiumMg: 1, PotassiumMg: 733, CholesterolMg: 0},
	{Name: "greek yogurt", Calories: 59, ProteinG: 10, CarbohydratesTotalG: 3.6, FatTotalG: 0.4, FatSaturatedG: 0.1, FiberG: 0, SugarG: 3.2, SodiumMg: 36, PotassiumMg: 141, CholesterolMg: 5},
	{Name: "sweet potato", Calories: 86, ProteinG: 1.6, CarbohydratesTotalG: 20.1, FatTotalG: 0.1, FatSaturatedG: 0, FiberG: 3, SugarG: 4.2, SodiumMg: 55, PotassiumMg: 337, CholesterolMg: 0},
	{Name: "avocado", Calories: 160, ProteinG: 2, CarbohydratesTotalG: 8.5, FatTotalG: 14.7, FatSaturatedG: 2.1, FiberG: 6.7, SugarG: 0.7, SodiumMg: 7, PotassiumMg: 485, CholesterolMg: 0},
	{Name: "ground beef", Calories: 250, ProteinG: 26, CarbohydratesTotalG: 0, FatTotalG: 15, FatSaturatedG: 6, FiberG: 0, SugarG: 0, SodiumMg: 76, PotassiumMg: 318, CholesterolMg: 88},
	{Name: "tofu", Calories: 76, ProteinG: 8, CarbohydratesTotalG: 1.9, FatTotalG: 4.8, FatSaturatedG: 0.7, FiberG: 0.3, SugarG: 0.6, SodiumMg: 7, PotassiumMg: 121, CholesterolMg: 0},
	{Name: "whole milk", Calories: 61, ProteinG: 3.2, CarbohydratesTotalG: 4.8, FatTotalG: 3.3, FatSaturatedG: 1.9, FiberG: 0, SugarG: 5.1, SodiumMg: 43, PotassiumMg: 132, CholesterolMg: 10},
	{Name: "spinach", Calories: 23, ProteinG: 2.9, CarbohydratesTotalG: 3.6, FatTotalG: 0.4, FatSaturatedG: 0.1, FiberG: 2.2, SugarG: 0.4, SodiumMg: 79, PotassiumMg: 558, CholesterolMg: 0},
	{Name: "peanut butter", Calories: 588, ProteinG: 25, CarbohydratesTotalG: 20, FatTotalG: 50, FatSaturatedG: 10, FiberG: 6, SugarG: 9.2, SodiumMg: 17, PotassiumMg: 649, CholesterolMg: 0},
}
