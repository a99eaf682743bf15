package explain

// layTable maps knowledge-base symptom labels to plain-language text for
// parents.
var layTable = map[string]string{
	"Fever":                                     "Temperature 38°C (100.4°F) or higher.",
	"Low-grade fever":                           "Mildly elevated temperature, usually under 38.5°C (101.3°F).",
	"Cough":                                     "Repeated forceful exhalations; can be dry or with mucus.",
	"Rhinorrhea (runny nose)":                   "Runny nose with clear or colored mucus.",
	"Nasal congestion":                          "Stuffy or blocked nose; breathing through mouth.",
	"Sore throat":                               "Pain or scratchiness in the throat, worse when swallowing.",
	"Ear pain":                                  "Pain in or around the ear; child may be fussy or cry.",
	"Ear pulling/tugging":                       "Child pulls on the ear, often due to discomfort.",
	"Otorrhea (ear discharge)":                  "Fluid or pus draining from the ear canal.",
	"Wheezing":                                  "High-pitched whistling sound when breathing out.",
	"Dyspnea (shortness of breath)":             "Hard to catch breath; breathing feels labored.",
	"Chest tightness":                           "Sensation of pressure or tight feeling in the chest.",
	"Tachypnea (rapid breathing)":               "Breathing faster than usual for age.",
	"Chest retractions":                         "Skin pulls in between ribs/neck when breathing (working hard).",
	"Hypoxemia (low oxygen)":                    "Low blood oxygen; may look bluish or very tired.",
	"Pleuritic chest pain":                      "Sharp chest pain that worsens with deep breaths or cough.",
	"Crackles on auscultation":                  "Bubbly popping sounds heard by a clinician with a stethoscope.",
	"Myalgia (muscle aches)":                    "General body aches and pains.",
	"Headache":                                  "Pain in the head or face area.",
	"Malaise/fatigue":                           "Low energy; feeling unwell or unusually tired.",
	"Barking cough":                             "Harsh, seal-like cough sound.",
	"Stridor":                                   "High-pitched noisy breathing, especially when inhaling.",
	"Hoarseness":                                "Raspy or weak voice.",
	"Tonsillar exudate":                         "White patches or pus on the tonsils.",
	"Tender anterior cervical lymph nodes":      "Sore, enlarged glands in the front of the neck.",
	"Nasal discharge (purulent)":                "Thick yellow/green mucus from the nose.",
	"Persistent cough (>10 days)":               "Cough lasting longer than 10 days.",
	"Vomiting":                                  "Throwing up.",
	"Diarrhea":                                  "Loose or watery stools more often than usual.",
	"Abdominal pain":                            "Stomach ache or tummy pain.",
	"Decreased urination":                       "Fewer wet diapers or bathroom trips than usual.",
	"Signs of dehydration":                      "Dry mouth, sunken eyes, few tears, very tired.",
	"Dysuria (painful urination)":               "Pain or burning when peeing.",
	"Urinary frequency":                         "Needing to pee more often than usual.",
	"Urinary urgency":                           "Strong sudden need to pee.",
	"Abdominal/suprapubic pain":                 "Pain in the lower belly above the pubic bone.",
	"Eye redness":                               "Red or pink eyes.",
	"Eye discharge":                             "Goopy or crusty drainage from the eyes.",
	"Itchy eyes":                                "Eyes that feel itchy or irritated.",
	"Eyelids stuck shut on waking":              "Eyelids glued by crust in the morning.",
	"Oral ulcers":                               "Small painful sores inside the mouth.",
	"Vesicular rash on hands":                   "Small blisters on the hands.",
	"Vesicular rash on feet":                    "Small blisters on the feet.",
	"Pruritus (itching)":                        "Skin that feels itchy.",
	"Eczematous rash":                           "Dry, scaly, itchy patches of skin.",
	"Xerosis (dry skin)":                        "Very dry skin.",
	"Flexural involvement":                      "Rash in elbow/knee folds, neck, ankles.",
	"Honey-colored crusts":                      "Yellowish crusts on red skin, often on face.",
	"Erythema (redness)":                        "Redness of the skin.",
	"Facial rash (slapped-cheek)":               "Bright red cheeks, like a slap mark.",
	"Lacy reticular rash (trunk)":               "Lacy, net-like rash on the body.",
	"High fever (3-5 days)":                     "High temperature lasting 3 to 5 days.",
	"Maculopapular rash (after fever resolves)": "Flat and bumpy rash appearing after fever goes away.",
	"Pruritic vesicular rash":                   "Itchy blisters on the skin.",
	"Lesions in different stages":               "New blisters, scabs, and spots all at once.",
	"Ear canal edema/erythema":                  "Swollen, red ear canal.",
	"Ear pain (worse with tragal pressure)":     "Ear hurts when you press the small flap in front of the ear.",
	"Sneezing":                                  "Sudden air bursts through nose/mouth.",
}
