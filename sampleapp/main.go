package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/anirudhraja/kiwilite"
	"github.com/anirudhraja/kiwilite/dynamic"
)

func main() {
	kiwi := kiwilite.New()

	// Loads geo.yaml, post.proto and user.proto; user.proto imports post.proto
	if err := kiwi.LoadSchema("testdata"); err != nil {
		log.Fatalf("Failed to load schemas: %v", err)
	}

	fmt.Println("Kiwilite Sample App")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("Schemas:", strings.Join(kiwi.ListSchemas(), ", "))
	fmt.Println("Types:  ", strings.Join(kiwi.ListTypes(), ", "))

	userSchema, err := kiwi.GetRegistry().GetSchema("user")
	if err != nil {
		log.Fatalf("Failed to get user schema: %v", err)
	}
	fmt.Println("\nuser schema as Kiwi:")
	fmt.Println(userSchema.Text())

	binarySchema := userSchema.Encode()
	fmt.Printf("Binary schema: %d bytes, fingerprint %016x\n", len(binarySchema), userSchema.Fingerprint())

	demonstrateUser(kiwi)
	demonstrateTrack(kiwi)
}

func demonstrateUser(kiwi *kiwilite.Kiwi) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("User round trip")
	fmt.Println(strings.Repeat("=", 70))

	post := dynamic.NewObject("Post")
	post.Set("id", dynamic.UInt(7))
	post.Set("title", dynamic.String("Hello, Kiwi"))
	post.Set("tags", dynamic.Array{dynamic.String("intro"), dynamic.String("go")})
	post.Set("visibility", dynamic.Enum{Def: "Post.Visibility", Name: "PUBLIC"})

	home := dynamic.NewObject("Location")
	home.Set("lat", dynamic.Float(37.77))
	home.Set("lng", dynamic.Float(-122.42))

	user := dynamic.NewObject("User")
	user.Set("name", dynamic.String("Ada"))
	user.Set("karma", dynamic.Int(-3))
	user.Set("posts", dynamic.Array{post})
	user.Set("avatar", dynamic.BytesValue([]byte{0x89, 0x50, 0x4E, 0x47}))
	user.Set("rating", dynamic.Float(4.5))
	user.Set("home", home)

	data, err := kiwi.Marshal(user, "blog.User")
	if err != nil {
		log.Fatalf("Failed to marshal user: %v", err)
	}
	fmt.Printf("Encoded %d bytes: %v\n", len(data), data)

	decoded, err := kiwi.Parse(data, "User")
	if err != nil {
		log.Fatalf("Failed to parse user: %v", err)
	}
	fmt.Println("Decoded:", decoded)

	n, err := kiwi.Skip(data, "User")
	if err != nil {
		log.Fatalf("Failed to skip user: %v", err)
	}
	fmt.Printf("Skip walked %d bytes\n", n)

	jsonData, err := dynamic.ToJSONIndent(decoded, "  ")
	if err != nil {
		log.Fatalf("Failed to render JSON: %v", err)
	}
	fmt.Println("As JSON:")
	fmt.Println(string(jsonData))

	fromJSON, err := kiwi.FromJSON(jsonData, "User")
	if err != nil {
		log.Fatalf("Failed to encode JSON: %v", err)
	}
	fmt.Println("JSON re-encodes to the same bytes:", string(fromJSON) == string(data))
}

func demonstrateTrack(kiwi *kiwilite.Kiwi) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("Track from JSON")
	fmt.Println(strings.Repeat("=", 70))

	data, err := kiwi.FromJSON([]byte(`{
  "name": "morning run",
  "points": [{"lat": 1.5, "lng": -2.25}, {"lat": 1.75, "lng": -2}]
}`), "geo.Track")
	if err != nil {
		log.Fatalf("Failed to encode track: %v", err)
	}
	fmt.Printf("Encoded %d bytes: %v\n", len(data), data)

	track, err := kiwi.Parse(data, "Track")
	if err != nil {
		log.Fatalf("Failed to parse track: %v", err)
	}
	fmt.Println("Decoded:", track)

	// Structs have no field tags, so a missing field cannot be encoded
	_, err = kiwi.FromJSON([]byte(`{"points": [{"lat": 1}]}`), "Track")
	fmt.Println("Missing struct field:", err)
}
